package analyze

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/diagnostic"
)

const extractSrc = `package command

import (
	"time"

	u "net/url"
)

// Command describes a process to launch.
type Command struct {
	Executable string
	// +builder(each = "arg")
	Args       []string
	CurrentDir *string
	Timeout    time.Duration
	Proxy      *u.URL
	A, B       int
	_          int
}

type Color int

type Handler func()

type Empty struct{}

type Blank struct{ _ int }

type Embeds struct {
	time.Time
	Name string
}

type Box[T any] struct {
	Value T
}

type Alias = Command

type Env map[string]string
`

func extractFromSource(t *testing.T, name string) (*TypeDescriptor, error) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "command.go", extractSrc, parser.ParseComments)
	require.NoError(t, err)

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, s := range gd.Specs {
			if ts := s.(*ast.TypeSpec); ts.Name.Name == name {
				return ExtractSpec(fset, ts, FileResolver(file))
			}
		}
	}

	t.Fatalf("type %s not found", name)

	return nil, nil
}

func TestExtractSpec_Record(t *testing.T) {
	desc, err := extractFromSource(t, "Command")
	require.NoError(t, err)

	assert.Equal(t, "Command", desc.Name)
	assert.Equal(t, 10, desc.Location.Line)

	names := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"Executable", "Args", "CurrentDir", "Timeout", "Proxy", "A", "B"}, names)

	args := desc.Field("Args")
	require.NotNil(t, args)
	assert.Equal(t, SignatureSequence, args.Type.Kind)
	require.Len(t, args.Directives, 1)
	assert.Equal(t, `builder(each = "arg")`, args.Directives[0].Text)

	assert.Equal(t, SignatureOptional, desc.Field("CurrentDir").Type.Kind)

	timeout := desc.Field("Timeout")
	assert.Equal(t, SignaturePlain, timeout.Type.Kind)
	assert.Equal(t, []Import{{Name: "time", Path: "time"}}, timeout.Type.Imports)

	proxy := desc.Field("Proxy")
	assert.Equal(t, "*u.URL", proxy.Type.Expr)
	assert.Equal(t, []Import{{Name: "u", Path: "net/url"}}, proxy.Type.Imports)

	assert.Equal(t, "int", desc.Field("B").Type.Expr)
	assert.Nil(t, desc.Field("_"))
}

func TestExtractSpec_UnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"Color", "Color is a named int type"},
		{"Handler", "a func type"},
		{"Empty", "has no named fields"},
		{"Blank", "has no named fields"},
		{"Embeds", "embedded field time.Time is not supported"},
		{"Box", "generic type Box is not supported"},
		{"Alias", "an alias of Command"},
		{"Env", "a map type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := extractFromSource(t, tt.name)
			require.Error(t, err)
			assert.Nil(t, desc)

			d, ok := diagnostic.As(err)
			require.True(t, ok)
			assert.Equal(t, diagnostic.KindUnsupportedShape, d.Kind)
			assert.Equal(t, tt.name, d.TypeName)
			assert.Contains(t, d.Message, tt.msg)
			assert.True(t, d.Location.IsValid())
		})
	}
}

func TestImportName(t *testing.T) {
	assert.Equal(t, "time", importName("time"))
	assert.Equal(t, "url", importName("net/url"))
	assert.Equal(t, "yaml", importName("gopkg.in/yaml.v3"))
	assert.Equal(t, "cmp", importName("github.com/google/go-cmp"))
	assert.Equal(t, "hcl", importName("github.com/hashicorp/hcl/v2"))
	assert.Equal(t, "cty", importName("github.com/zclconf/go-cty"))
}
