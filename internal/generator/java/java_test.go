package java

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/generator/gentest"
	"github.com/mcncl/polytyper/internal/models"
)

const scenarioA = `{"id":1,"name":"CppBot","features":["json","docker","mcp"],"meta":{"owner":"lab","ready":true}}`

func TestRender_ScenarioA(t *testing.T) {
	b := New()
	art, err := b.Render(gentest.Registry(t, b, "CppBotConfig", scenarioA), generator.Options{Namespace: "com.example.bots"})
	require.NoError(t, err)

	require.Len(t, art.Files, 1)
	assert.Equal(t, "CppBotConfig.java", art.Files[0].Name)
	assert.Empty(t, art.Warnings)

	src := art.Files[0].Content
	assert.True(t, strings.HasPrefix(src, "// Code generated by polytyper. DO NOT EDIT.\n\npackage com.example.bots;\n"))
	for _, want := range []string{
		"import com.fasterxml.jackson.annotation.JsonIgnoreProperties;\n",
		"import com.fasterxml.jackson.databind.ObjectMapper;\n",
		"import java.util.List;\n",
		"@JsonIgnoreProperties(ignoreUnknown = true)\npublic class CppBotConfig {\n",
		"    private static final ObjectMapper MAPPER = new ObjectMapper();\n",
		"    @JsonProperty(\"id\")\n    public long id;\n",
		"    @JsonProperty(\"features\")\n    public List<String> features;\n",
		"    public Meta meta;\n",
		"    public static CppBotConfig fromJson(String json) throws JsonProcessingException {\n",
		"    @JsonIgnoreProperties(ignoreUnknown = true)\n    public static class Meta {\n",
		"        public boolean ready;\n",
		"        public static Meta fromJson(String json) throws JsonProcessingException {\n",
		"            return MAPPER.readValue(json, Meta.class);\n",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "JsonInclude")
	assert.Equal(t, 1, strings.Count(src, "ObjectMapper MAPPER"))
}

func TestRender_OptionalsAndList(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{Indent: "\t"}, `[{"a":1},{"a":2,"b":"x","c":[1.5]}]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "\t@JsonProperty(\"a\")\n\tpublic long a;\n")
	assert.Contains(t, src, "\t@JsonProperty(\"b\")\n\t@JsonInclude(JsonInclude.Include.NON_NULL)\n\tpublic String b;\n")
	assert.Contains(t, src, "\tpublic List<Double> c;\n")
	assert.Contains(t, src, "public static List<Root> fromJsonList(String json) throws JsonProcessingException {")
	assert.Contains(t, src, "return MAPPER.readValue(json, new TypeReference<List<Root>>() {});")
	assert.Contains(t, src, "import com.fasterxml.jackson.core.type.TypeReference;")
	assert.NotContains(t, src, "package ")
}

func TestRender_WrappedUnion(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `["x", 1]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "    // one of: int64 | string\n    @JsonValue\n    public List<Object> value;\n")
	assert.Contains(t, src, "    @JsonCreator(mode = JsonCreator.Mode.DELEGATING)\n    public Root(List<Object> value) {\n")
	assert.NotContains(t, src, "@JsonIgnoreProperties")
	assert.Equal(t, []string{models.WarnDegradedUnion}, gentest.Codes(art))
}

func TestRender_Split(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{SplitFiles: true}, `{"user": {"name": "a"}, "tags": ["x"]}`)
	require.Len(t, art.Files, 2)
	assert.Equal(t, "Root.java", art.Files[0].Name)
	assert.Equal(t, "User.java", art.Files[1].Name)

	user := art.Files[1].Content
	assert.Contains(t, user, "public class User {")
	assert.Contains(t, user, "private static final ObjectMapper MAPPER")
	assert.NotContains(t, user, "java.util.List")
	assert.Contains(t, art.Files[0].Content, "import java.util.List;")
}

func TestRender_KeywordsAndKeys(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `{"class": 1, "public": true, "say \"hi\"\n": "x", "String": {"a": 1}}`)
	src := art.Files[0].Content

	assert.Contains(t, src, "    @JsonProperty(\"class\")\n    public long class_;\n")
	assert.Contains(t, src, "    public boolean public_;\n")
	assert.Contains(t, src, `@JsonProperty("say \"hi\"\n")`)
	assert.Contains(t, src, "    public String2 string;\n")
	assert.Contains(t, src, "public static class String2 {")
}
