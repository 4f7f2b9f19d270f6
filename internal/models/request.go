package models

// FieldNaming selects how field identifiers are derived.
type FieldNaming string

const (
	// PreserveKeys derives identifiers from the JSON keys.
	PreserveKeys FieldNaming = "preserve"
	// Positional issues ordinal slot names (field1, field2, ...).
	Positional FieldNaming = "positional"
)

// Request describes one generation call.
type Request struct {
	// Samples are raw JSON texts. Values are already parsed samples; both
	// may be set and are analyzed together.
	Samples []string
	Values  []Value

	Target      string
	RootName    string
	Namespace   string
	SplitFiles  bool
	FieldNaming FieldNaming
	// Indent is the indentation unit for backends that honor it. Empty means
	// the backend default.
	Indent string
	Strict bool
	// RootPath selects a sub-value of each sample, e.g. "data.items[0]".
	RootPath string
	MaxDepth int

	FieldMappings map[string]string
	// SingularizeNames controls singular type names for array elements.
	// Nil means enabled.
	SingularizeNames *bool
	FileHeader       string
}

// Warning codes carried in Artifact.Warnings.
const (
	WarnUnificationConflict = "unification-conflict"
	WarnUnsupportedFeature  = "unsupported-feature"
	WarnDegradedUnion       = "degraded-union"
)

// Warning is a non-fatal diagnostic produced during generation.
type Warning struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Path != "" {
		return w.Code + " at " + w.Path + ": " + w.Message
	}
	return w.Code + ": " + w.Message
}

// File is one generated output file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Artifact is the result of a generation call.
type Artifact struct {
	Files        []File    `json:"files"`
	RootTypeName string    `json:"root_type_name"`
	Language     string    `json:"language"`
	RootIsArray  bool      `json:"root_is_array"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// File returns the content of the named file.
func (a Artifact) File(name string) (string, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}
