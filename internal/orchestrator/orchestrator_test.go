package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/analyze"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/logging"
)

const descriptorYAML = `package: command
types:
  - name: Command
    fields:
      - name: Executable
        type: string
        directives: ['debug(format = "%q")']
      - name: Args
        type: "[]string"
        directives: ['builder(each = "arg")']
      - name: CurrentDir
        type: "*string"
        directives: ['builder(each = "dir")']
  - name: Mode
    shape: enum
  - name: Request
    fields:
      - name: Headers
        type: string
        directives: ['builder(each = "header")']
`

func writeDescriptor(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func str() analyze.TypeSignature {
	return analyze.Plain("string")
}

func TestGenerate(t *testing.T) {
	td := &analyze.TypeDescriptor{
		Name:    "Command",
		PkgName: "command",
		Fields: []analyze.FieldDescriptor{
			{Name: "Executable", Type: str()},
			{Name: "Args", Type: analyze.Sequence(str()), Directives: []analyze.RawDirective{{Text: `builder(each = "arg")`}}},
		},
	}

	files, err := New(DefaultConfig(), nil).Generate(td)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "command_builder.go", files[0].Filename)
}

func TestGenerate_AbortsOnDiagnostic(t *testing.T) {
	td := &analyze.TypeDescriptor{
		Name:    "Command",
		PkgName: "command",
		Fields: []analyze.FieldDescriptor{
			{Name: "Executable", Type: str(), Directives: []analyze.RawDirective{{Text: `builder(each = "arg")`}}},
		},
	}

	files, err := New(DefaultConfig(), nil).Generate(td)
	require.Error(t, err)
	assert.Empty(t, files)

	d, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.KindTypeMismatch, d.Kind)
}

func TestGenerate_Stringer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stringer = true

	td := &analyze.TypeDescriptor{
		Name:    "Command",
		PkgName: "command",
		Fields:  []analyze.FieldDescriptor{{Name: "Executable", Type: str()}},
	}

	files, err := New(cfg, nil).Generate(td)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "command_builder.go", files[0].Filename)
	assert.Equal(t, "command_string.go", files[1].Filename)

	td.Fields[0].Directives = []analyze.RawDirective{{Text: "debug"}}
	_, err = New(cfg, nil).Generate(td)
	require.Error(t, err)
}

func TestRun_Descriptor(t *testing.T) {
	logger := logging.NewTestLogger()
	path := writeDescriptor(t, "types.yaml", descriptorYAML)

	res, err := New(DefaultConfig(), logger.Logger).Run(Request{Descriptor: path})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "command_builder.go", res.Files[0].Filename)
	assert.Equal(t, filepath.Dir(path), res.Files[0].Dir)

	require.Len(t, res.Diagnostics.Errors, 2)
	assert.Equal(t, diagnostic.KindUnsupportedShape, res.Diagnostics.Errors[0].Kind)
	assert.Equal(t, "Mode", res.Diagnostics.Errors[0].TypeName)
	assert.Equal(t, diagnostic.KindTypeMismatch, res.Diagnostics.Errors[1].Kind)
	assert.Equal(t, "Request", res.Diagnostics.Errors[1].TypeName)
	assert.Equal(t, "Headers", res.Diagnostics.Errors[1].Field)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.KindIgnoredDirective, res.Diagnostics.Warnings[0].Kind)
	assert.Equal(t, "CurrentDir", res.Diagnostics.Warnings[0].Field)

	logger.AssertField(t, "generated builder", "type", "Command")
}

func TestRun_SelectedTypes(t *testing.T) {
	path := writeDescriptor(t, "types.yaml", descriptorYAML)

	res, err := New(DefaultConfig(), nil).Run(Request{Descriptor: path, Types: []string{"Command", "Missing", "Requst"}})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	require.Len(t, res.Diagnostics.Errors, 2)
	assert.Equal(t, "type Missing not found", res.Diagnostics.Errors[0].Message)
	assert.Equal(t, `type Requst not found, did you mean "Request"?`, res.Diagnostics.Errors[1].Message)
}

func TestRun_OutputDirAndWrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen")

	cfg := DefaultConfig()
	cfg.Generator.OutputDir = out
	cfg.Stringer = true

	res, err := New(cfg, nil).Run(Request{
		Descriptor: writeDescriptor(t, "types.yaml", descriptorYAML),
		Types:      []string{"Command"},
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	require.NoError(t, Write(res))

	for _, name := range []string{"command_builder.go", "command_string.go"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_HCLDescriptor(t *testing.T) {
	path := writeDescriptor(t, "types.hcl", `package = "command"

record "Command" {
  field "Executable" { type = "string" }
  field "Args" {
    type       = "[]string"
    directives = ["builder(each = \"arg\")"]
  }
}
`)

	res, err := New(DefaultConfig(), nil).Run(Request{Descriptor: path})
	require.NoError(t, err)
	assert.False(t, res.Diagnostics.HasErrors())
	require.Len(t, res.Files, 1)
}

func TestRun_Packages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stringer = true

	res, err := New(cfg, nil).Run(Request{Patterns: []string{"builder-generator/examples/command"}})
	require.NoError(t, err)
	require.False(t, res.Diagnostics.HasErrors(), "%v", res.Diagnostics.Error())

	var names []string
	for _, f := range res.Files {
		names = append(names, f.Filename)

		checkedIn, err := os.ReadFile(filepath.Join(f.Dir, f.Filename))
		require.NoError(t, err)
		assert.Equal(t, string(checkedIn), string(f.Content), "%s is stale", f.Filename)
	}

	assert.Equal(t, []string{"command_builder.go", "command_string.go", "job_builder.go", "job_string.go"}, names)
}

func TestRun_BadRequest(t *testing.T) {
	o := New(DefaultConfig(), nil)

	_, err := o.Run(Request{})
	require.Error(t, err)

	_, err = o.Run(Request{Patterns: []string{"./..."}, Descriptor: "types.yaml"})
	require.Error(t, err)

	_, err = o.Run(Request{Descriptor: "types.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported descriptor extension")
}
