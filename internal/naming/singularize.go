package naming

import "strings"

// knownSingulars covers irregular and uncountable words the suffix rules
// get wrong.
var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"goods":     "goods",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"teeth":     "tooth",
	"feet":      "foot",
	"mice":      "mouse",
	"geese":     "goose",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
	"indices":   "index",
	"matrices":  "matrix",
	"criteria":  "criterion",
}

// Singularize converts a plural word into its singular form. Only the
// trailing word of a compound key is touched.
func Singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		if len(plural) > 0 && strings.ToUpper(plural[:1]) == plural[:1] && singular != "" {
			return strings.ToUpper(singular[:1]) + singular[1:]
		}
		return singular
	}

	lower := strings.ToLower(plural)
	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return plural[:len(plural)-3] + "y"
	case strings.HasSuffix(lower, "ches"), strings.HasSuffix(lower, "shes"), strings.HasSuffix(lower, "xes"):
		return plural[:len(plural)-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
		return plural
	case strings.HasSuffix(lower, "s") && len(lower) > 1:
		return plural[:len(plural)-1]
	}
	return plural
}
