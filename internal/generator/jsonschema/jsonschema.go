package jsonschema

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const defaultIndent = "  "

var rules = naming.Rules{FieldCase: naming.CamelCase}

// Backend emits a draft 2020-12 JSON Schema document with one $defs entry
// per object shape and union.
type Backend struct{}

// New creates a JSON Schema backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "jsonschema" }
func (b *Backend) FileExtension() string { return ".schema.json" }
func (b *Backend) Rules() naming.Rules   { return rules }

func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	if opts.SplitFiles {
		art.Warnings = append(art.Warnings, generator.SplitUnsupported("JSON Schema"))
	}

	e := &emitter{reg: reg, defs: jsonschema.Definitions{}}
	for _, nt := range reg.Types {
		if nt == reg.Root && reg.RootWrapped {
			continue
		}
		e.defs[nt.Name] = e.object(nt)
	}
	for _, u := range reg.Unions {
		e.defs[u.Name] = &jsonschema.Schema{
			Description: "One of: " + generator.UnionSummary(u.Node),
			AnyOf:       e.variants(u.Node),
		}
	}

	var doc *jsonschema.Schema
	switch {
	case reg.RootWrapped:
		doc = e.schema(reg.Root.Fields[0].Type)
	case reg.RootIsArray:
		doc = &jsonschema.Schema{Type: "array", Items: ref(reg.Root.Name)}
	default:
		doc = ref(reg.Root.Name)
	}
	doc.Version = jsonschema.Version
	doc.Title = reg.Root.Name
	doc.Comments = strings.Join(generator.HeaderLines(opts), "\n")
	if parts := generator.NamespaceParts(opts.Namespace); len(parts) > 0 {
		doc.ID = jsonschema.ID("urn:" + strings.Join(parts, ":") + ":" + reg.Root.Name)
	}
	if len(e.defs) > 0 {
		doc.Definitions = e.defs
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return art, errors.NewGenerateError("failed to encode JSON schema", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", generator.IndentOr(opts, defaultIndent)); err != nil {
		return art, errors.NewGenerateError("failed to indent JSON schema", err)
	}
	out.WriteByte('\n')

	art.Files = []models.File{{Name: generator.FileBase(reg.Root.Name) + b.FileExtension(), Content: out.String()}}
	return art, nil
}

type emitter struct {
	reg  *naming.Registry
	defs jsonschema.Definitions
}

// object describes nt. Unknown keys stay allowed.
func (e *emitter) object(nt *naming.NamedType) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Description:          "Shape found at " + nt.Node.Path,
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.TrueSchema,
	}
	for _, f := range nt.Fields {
		s.Properties.Set(f.Key, e.schema(f.Type))
		if !f.Optional() {
			s.Required = append(s.Required, f.Key)
		}
	}
	return s
}

func (e *emitter) schema(t *models.TypeNode) *jsonschema.Schema {
	switch t.Kind {
	case models.IntType:
		return &jsonschema.Schema{Type: "integer"}
	case models.DoubleType:
		return &jsonschema.Schema{Type: "number"}
	case models.BoolType:
		return &jsonschema.Schema{Type: "boolean"}
	case models.StringType:
		return &jsonschema.Schema{Type: "string"}
	case models.ArrayType:
		return &jsonschema.Schema{Type: "array", Items: e.schema(t.Elem)}
	case models.OptionalType:
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{e.schema(t.Elem), {Type: "null"}}}
	case models.ObjectType, models.UnionType:
		return ref(e.reg.NameOf(t))
	}
	return &jsonschema.Schema{}
}

func (e *emitter) variants(u *models.TypeNode) []*jsonschema.Schema {
	out := make([]*jsonschema.Schema, len(u.Variants))
	for i, v := range u.Variants {
		out[i] = e.schema(v)
	}
	return out
}

func ref(name string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}
