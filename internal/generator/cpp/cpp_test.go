package cpp

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
	art, err := b.Render(gentest.Registry(t, b, "CppBotConfig", scenarioA), generator.Options{Namespace: "lab.bots"})
	require.NoError(t, err)
	require.Len(t, art.Files, 1)
	assert.Equal(t, "cpp_bot_config.hpp", art.Files[0].Name)
	assert.Empty(t, art.Warnings)

	src := art.Files[0].Content
	for _, want := range []string{
		"#ifndef CPP_BOT_CONFIG_HPP\n#define CPP_BOT_CONFIG_HPP\n",
		"#include <nlohmann/json.hpp>\n",
		"namespace lab::bots {\n",
		"struct Meta {\n    std::string owner;\n    bool ready;\n};\n",
		"struct CppBotConfig {\n    std::int64_t id;\n    std::string name;\n    std::vector<std::string> features;\n    Meta meta;\n};\n",
		"inline void to_json(nlohmann::json& j, const CppBotConfig& v) {\n",
		"    j[\"features\"] = nlohmann::json(v.features);\n",
		"    v.meta = j.at(\"meta\").get<Meta>();\n",
		"inline CppBotConfig parse_cpp_bot_config(const std::string& text) {\n",
		"inline std::string dump_cpp_bot_config(const CppBotConfig& value, int indent = -1) {\n",
		"} // namespace lab::bots\n",
		"#endif // CPP_BOT_CONFIG_HPP\n",
	} {
		assert.Contains(t, src, want)
	}
	assert.Less(t, strings.Index(src, "struct Meta {"), strings.Index(src, "struct CppBotConfig {"))
	assert.NotContains(t, src, "parse_cpp_bot_config_list")
}

func TestRender_Optionals(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{Indent: "  "}, `[{"a":1},{"a":2,"b":"x","c":[1,null]}]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "  std::optional<std::string> b;\n")
	assert.Contains(t, src, "  std::optional<std::vector<std::optional<std::int64_t>>> c;\n")
	assert.Contains(t, src, "  if (auto it = j.find(\"b\"); it != j.end() && !it->is_null()) {\n    v.b = (*it).get<std::string>();\n  } else {\n    v.b = std::nullopt;\n  }\n")
	assert.Contains(t, src, "  if (v.b) {\n    j[\"b\"] = nlohmann::json(*v.b);\n  }\n")
	assert.Contains(t, src, "polytyper_detail::decode_array<std::optional<std::int64_t>>(e, [](const nlohmann::json& e) { return polytyper_detail::decode_optional<std::int64_t>(e, [](const nlohmann::json& e) { return e.get<std::int64_t>(); }); })")
	assert.Contains(t, src, "polytyper_detail::encode_array(e, [](const std::optional<std::int64_t>& e) { return polytyper_detail::encode_optional(e, [](const std::int64_t& e) { return nlohmann::json(e); }); })")
	assert.Contains(t, src, "inline std::vector<Root> parse_root_list(const std::string& text) {")
}

func TestRender_WrappedUnion(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `["x", 1]`)
	src := art.Files[0].Content

	assert.Contains(t, src, "    std::vector<nlohmann::json> value; // one of: int64 | string\n")
	assert.Contains(t, src, "    j = nlohmann::json(v.value);\n")
	assert.Contains(t, src, "    v.value = j.get<std::vector<nlohmann::json>>();\n")
	assert.Equal(t, []string{models.WarnDegradedUnion}, gentest.Codes(art))
}

func TestRender_Split(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{SplitFiles: true, Namespace: "api"}, scenarioA)
	require.Len(t, art.Files, 2)
	assert.Equal(t, "root.hpp", art.Files[0].Name)
	assert.Equal(t, "root.cpp", art.Files[1].Name)

	hpp, cpp := art.Files[0].Content, art.Files[1].Content
	assert.Contains(t, hpp, "void to_json(nlohmann::json& j, const Root& v);\n")
	assert.Contains(t, hpp, "void from_json(const nlohmann::json& j, Meta& v);\n")
	assert.Contains(t, hpp, "std::string dump_root(const Root& value, int indent = -1);\n")
	assert.NotContains(t, hpp, "inline void")

	assert.Contains(t, cpp, "#include \"root.hpp\"\n")
	assert.Contains(t, cpp, "namespace api {\n")
	assert.Contains(t, cpp, "void from_json(const nlohmann::json& j, Meta& v) {\n")
	assert.Contains(t, cpp, "std::string dump_root(const Root& value, int indent) {\n")
}

func TestRender_Keys(t *testing.T) {
	art := gentest.Render(t, New(), generator.Options{}, `{"class": 1, "userName": "a", "tab\tkey": true}`)
	src := art.Files[0].Content

	assert.Contains(t, src, "    std::int64_t class_;\n")
	assert.Contains(t, src, "    std::string user_name;\n")
	assert.Contains(t, src, `j.at("tab\tkey")`)
}
