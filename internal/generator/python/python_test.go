package python

import (
	"strings"
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
	assert.Equal(t, "cpp_bot_config.py", art.Files[0].Name)
	assert.Empty(t, art.Warnings)

	src := art.Files[0].Content
	assert.True(t, strings.HasPrefix(src, "# Code generated by polytyper. DO NOT EDIT.\n\nfrom __future__ import annotations\n"))
	for _, want := range []string{
		"@dataclass\nclass Meta:\n",
		"@dataclass\nclass CppBotConfig:\n",
		"    id: int\n    name: str\n    features: List[str]\n    meta: Meta\n",
		"    def from_dict(obj: Any) -> CppBotConfig:\n",
		"            id=int(obj[\"id\"]),\n",
		"            features=[str(x0) for x0 in obj[\"features\"]],\n",
		"            meta=Meta.from_dict(obj[\"meta\"]),\n",
		"        result[\"features\"] = list(self.features)\n",
		"        result[\"meta\"] = self.meta.to_dict()\n",
		"        return CppBotConfig.from_dict(json.loads(text))\n",
	} {
		assert.Contains(t, src, want)
	}
	assert.Less(t, strings.Index(src, "class Meta:"), strings.Index(src, "class CppBotConfig:"))
}

func TestRender_Optionals(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `[{"b":"x","a":1},{"x":true,"a":2,"c":[1,null]}]`)
	src := art.Files[0].Content

	// Required fields are declared before defaulted ones.
	assert.Contains(t, src, "    a: int\n    b: Optional[str] = None\n    x: Optional[bool] = None\n    c: Optional[List[Optional[int]]] = None\n")
	assert.Contains(t, src, "            b=None if obj.get(\"b\") is None else str(obj.get(\"b\")),\n")
	assert.Contains(t, src, "            c=None if obj.get(\"c\") is None else [None if x0 is None else int(x0) for x0 in obj.get(\"c\")],\n")
	assert.Contains(t, src, "        if self.b is not None:\n            result[\"b\"] = self.b\n")
	assert.Contains(t, src, "def root_list_from_json(text: str) -> List[Root]:\n    return [Root.from_dict(x) for x in json.loads(text)]\n")
	assert.Contains(t, src, "def root_list_to_json(items: List[Root]) -> str:\n")

	// The JSON key order is kept on output.
	assert.Less(t, strings.Index(src, `result["b"]`), strings.Index(src, `result["a"]`))
}

func TestRender_WrappedUnion(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{Indent: "  "}, `["x", 1]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "  # one of: int64 | string\n  value: List[Any]\n")
	assert.Contains(t, src, "    return Root(value=list(obj))\n")
	assert.Contains(t, src, "  def to_dict(self) -> Any:\n    return list(self.value)\n")
	assert.Equal(t, []string{models.WarnDegradedUnion}, gentest.Codes(art))
}

func TestRender_UnsupportedOptions(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{SplitFiles: true, Namespace: "pkg"}, `{"a": 1}`)
	require.Len(t, art.Files, 1)
	assert.Equal(t, []string{models.WarnUnsupportedFeature, models.WarnUnsupportedFeature}, gentest.Codes(art))
}

func TestRender_Identifiers(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `{"class": 1, "to_dict": 2, "userName": "x", "none": {"a": 1}}`)
	src := art.Files[0].Content

	assert.Contains(t, src, "    class_: int\n")
	assert.Contains(t, src, "    to_dict_: int\n")
	assert.Contains(t, src, "    user_name: str\n")
	assert.Contains(t, src, "    none: None2\n")
	assert.Contains(t, src, "            class_=int(obj[\"class\"]),\n")
}
