package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/diagnostic"
)

const commandYAML = `package: command
path: example.com/command
imports:
  time: time
types:
  - name: Command
    fields:
      - name: Executable
        type: string
      - name: Args
        type: "[]string"
        directives:
          - 'builder(each = "arg")'
      - name: CurrentDir
        type: "*string"
      - name: Timeout
        type: time.Duration
  - name: Color
    shape: enum
  - name: Broken
    fields:
      - name: When
        type: clock.Time
`

const commandHCL = `package = "command"
path    = "example.com/command"
imports = { time = "time" }

record "Command" {
  field "Executable" { type = "string" }
  field "Args" {
    type       = "[]string"
    directives = ["+builder(each = \"arg\")"]
  }
  field "CurrentDir" { type = "*string" }
  field "Timeout" { type = "time.Duration" }
}

record "Color" {
  shape = "enum"
}

record "Broken" {
  field "When" { type = "clock.Time" }
}

record "BadType" {
  field "When" { type = 3 }
}
`

var ignoreLocations = cmpopts.IgnoreTypes(diagnostic.Location{})

func TestParseYAML(t *testing.T) {
	file, err := ParseYAML([]byte(commandYAML), "testdata/command.yaml")
	require.NoError(t, err)

	assert.Equal(t, "command", file.Package)
	assert.Equal(t, "testdata", file.Dir)
	assert.Equal(t, []string{"Command", "Color", "Broken"}, file.TypeNames())
	assert.Equal(t, file.TypeNames(), file.Annotated())

	desc, err := file.Extract("Command")
	require.NoError(t, err)
	require.Len(t, desc.Fields, 4)

	assert.Equal(t, "example.com/command", desc.PkgPath)
	assert.Equal(t, diagnostic.Location{File: "testdata/command.yaml", Line: 6, Column: 5}, desc.Location)

	args := desc.Fields[1]
	require.Len(t, args.Directives, 1)
	assert.Equal(t, `builder(each = "arg")`, args.Directives[0].Text)
	assert.Equal(t, 13, args.Directives[0].Location.Line)
	assert.Equal(t, []Import{{Name: "time", Path: "time"}}, desc.Fields[3].Type.Imports)
}

func TestParseYAML_RecordErrors(t *testing.T) {
	file, err := ParseYAML([]byte(commandYAML), "command.yaml")
	require.NoError(t, err)

	_, err = file.Extract("Color")
	d, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.KindUnsupportedShape, d.Kind)
	assert.Contains(t, d.Message, "Color is a enum")

	_, err = file.Extract("Broken")
	d, ok = diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, "When", d.Field)
	assert.Contains(t, d.Message, `unknown package qualifier "clock"`)

	_, err = file.Extract("Missing")
	assert.ErrorContains(t, err, "type Missing not found")
}

func TestParseYAML_FileErrors(t *testing.T) {
	_, err := ParseYAML([]byte("types: ["), "bad.yaml")
	assert.ErrorContains(t, err, "failed to parse descriptor YAML")

	_, err = ParseYAML([]byte("package: 1x\n"), "bad.yaml")
	assert.ErrorContains(t, err, "invalid package name")

	dup := "package: p\ntypes:\n  - name: A\n  - name: A\n"
	_, err = ParseYAML([]byte(dup), "dup.yaml")
	assert.ErrorContains(t, err, "duplicate record A")

	nonScalar := "package: p\ntypes:\n  - name: A\n    fields:\n      - name: X\n        type: int\n        directives:\n          - [a]\n"
	_, err = ParseYAML([]byte(nonScalar), "ns.yaml")
	assert.ErrorContains(t, err, "directive must be a string")
}

func TestParseYAML_DuplicateField(t *testing.T) {
	src := "package: p\ntypes:\n  - name: A\n    fields:\n      - {name: X, type: int}\n      - {name: X, type: int}\n"
	file, err := ParseYAML([]byte(src), "a.yaml")
	require.NoError(t, err)

	_, err = file.Extract("A")
	assert.ErrorContains(t, err, "duplicate field X")
}

func TestParseHCL(t *testing.T) {
	file, err := ParseHCL([]byte(commandHCL), "command.hcl")
	require.NoError(t, err)

	assert.Equal(t, []string{"Command", "Color", "Broken", "BadType"}, file.TypeNames())

	desc, err := file.Extract("Command")
	require.NoError(t, err)

	assert.Equal(t, "command.hcl", desc.Location.File)
	assert.Equal(t, 5, desc.Location.Line)
	assert.Equal(t, `builder(each = "arg")`, desc.Fields[1].Directives[0].Text)
	assert.Equal(t, 9, desc.Fields[1].Directives[0].Location.Line)

	_, err = file.Extract("Color")
	d, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.KindUnsupportedShape, d.Kind)

	_, err = file.Extract("BadType")
	d, ok = diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, "BadType", d.TypeName)
	assert.Contains(t, d.Message, `Attribute "type" must be a string`)
	assert.Equal(t, 24, d.Location.Line)
}

func TestParseHCL_FileErrors(t *testing.T) {
	_, err := ParseHCL([]byte(`package = `), "bad.hcl")
	assert.ErrorContains(t, err, "failed to parse descriptor HCL")

	_, err = ParseHCL([]byte(`record "A" {}`), "bad.hcl")
	assert.ErrorContains(t, err, "invalid descriptor HCL")

	_, err = ParseHCL([]byte(`package = 3`), "bad.hcl")
	assert.ErrorContains(t, err, "invalid package")

	_, err = ParseHCL([]byte("package = \"p\"\nimports = [\"x\"]\n"), "bad.hcl")
	assert.ErrorContains(t, err, "invalid imports")
}

func TestDescriptorFrontEndsAgree(t *testing.T) {
	fromYAML, err := ParseYAML([]byte(commandYAML), "command.yaml")
	require.NoError(t, err)

	fromHCL, err := ParseHCL([]byte(commandHCL), "command.hcl")
	require.NoError(t, err)

	a, err := fromYAML.Extract("Command")
	require.NoError(t, err)

	b, err := fromHCL.Extract("Command")
	require.NoError(t, err)

	if diff := cmp.Diff(a, b, ignoreLocations); diff != "" {
		t.Fatalf("YAML and HCL descriptors differ (-yaml +hcl):\n%s", diff)
	}
}

func TestLoadDescriptorFiles(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "command.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(commandYAML), 0o644))

	hclPath := filepath.Join(dir, "command.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(commandHCL), 0o644))

	y, err := LoadYAMLFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, dir, y.Dir)

	h, err := LoadHCLFile(hclPath)
	require.NoError(t, err)
	assert.Equal(t, dir, h.Dir)

	_, err = LoadYAMLFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read descriptor file")

	_, err = LoadHCLFile(filepath.Join(dir, "missing.hcl"))
	assert.ErrorContains(t, err, "failed to read descriptor file")
}
