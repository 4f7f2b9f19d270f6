package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/generator/gentest"
	"github.com/mcncl/polytyper/internal/models"
)

func TestRender_ScenarioA(t *testing.T) {
	b := New()
	input := `{"id":1,"name":"CppBot","features":["json","docker","mcp"],"meta":{"owner":"lab","ready":true}}`
	art, err := b.Render(gentest.Registry(t, b, "CppBotConfig", input), generator.Options{})
	require.NoError(t, err)
	require.Len(t, art.Files, 1)
	assert.Equal(t, "cpp_bot_config.ts", art.Files[0].Name)
	assert.Empty(t, art.Warnings)

	src := art.Files[0].Content
	for _, want := range []string{
		"export interface CppBotConfig {\n  id: number;\n  name: string;\n  features: string[];\n  meta: Meta;\n}\n",
		"export interface Meta {\n  owner: string;\n  ready: boolean;\n}\n",
		"export function decodeCppBotConfig(value: unknown): CppBotConfig {\n  const obj = asRecord(value, \"CppBotConfig\");\n",
		"    features: obj[\"features\"] as string[],\n",
		"    meta: decodeMeta(obj[\"meta\"]),\n",
		"  out[\"meta\"] = encodeMeta(value.meta);\n",
		"export function parseCppBotConfig(text: string): CppBotConfig {\n  return decodeCppBotConfig(JSON.parse(text));\n}\n",
		"export function stringifyCppBotConfig(value: CppBotConfig): string {\n",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "parseCppBotConfigList")
}

func TestRender_KeysAndOptionals(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `[{"user_id":1,"items":[{"a":1}]},{"user_id":2,"note":"x","scores":[1,null]}]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "  userId: number;\n  items?: Item[] | null;\n  note?: string | null;\n  scores?: Array<number | null> | null;\n")
	assert.Contains(t, src, "    userId: obj[\"user_id\"] as number,\n")
	assert.Contains(t, src, "    note: (obj[\"note\"] ?? null) as string | null,\n")
	assert.Contains(t, src, "    scores: (obj[\"scores\"] ?? null) as Array<number | null> | null,\n")
	assert.Contains(t, src, "    items: obj[\"items\"] == null ? null : (obj[\"items\"] as unknown[]).map((x0) => decodeItem(x0)),\n")
	assert.Contains(t, src, "  if (value.items != null) {\n    out[\"items\"] = value.items.map((x0) => encodeItem(x0));\n  }\n")
	assert.Contains(t, src, "  if (value.scores != null) {\n    out[\"scores\"] = value.scores;\n  }\n")
	assert.Contains(t, src, "export function parseRootList(text: string): Root[] {")
	assert.Contains(t, src, "  return JSON.stringify(values.map((item) => encodeRoot(item)));\n")
}

func TestRender_Unions(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `{"value": [1, "a", {"k": true}], "plain": 1}`, `{"value": [], "plain": "x"}`)
	src := art.Files[0].Content

	assert.Contains(t, src, "  value: ValueUnion[];\n  plain: PlainUnion;\n")
	assert.Contains(t, src, "export type ValueUnion = number | string | Value;\n")
	assert.Contains(t, src, "export type PlainUnion = number | string;\n")
	assert.Contains(t, src, "(isRecord(x0) ? decodeValue((x0 as Value)) : (x0 as ValueUnion))")
	assert.Contains(t, src, "    plain: obj[\"plain\"] as PlainUnion,\n")
	assert.Contains(t, src, "value.value.map((x0) => (isRecord(x0) ? encodeValue((x0 as Value)) : (x0 as ValueUnion)))")
	assert.Empty(t, art.Warnings)
}

func TestRender_WrappedAndNamespace(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{Namespace: "api.v1", Indent: "    ", SplitFiles: true}, `["a", "b"]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "export namespace api.v1 {\n    /** Root is the shape found at $. */\n    export interface Root {\n        value: string[];\n    }\n")
	assert.Contains(t, src, "        return { value: value as string[] };\n")
	assert.Contains(t, src, "    export function encodeRoot(value: Root): unknown {\n        return value.value;\n    }\n")
	assert.Equal(t, []string{models.WarnUnsupportedFeature}, gentest.Codes(art))
}
