package plan

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/analyze"
	"builder-generator/internal/diagnostic"
)

func field(name string, sig analyze.TypeSignature, directives ...string) analyze.FieldDescriptor {
	f := analyze.FieldDescriptor{Name: name, Type: sig, Location: diagnostic.Location{File: "command.go", Line: 1}}
	for _, d := range directives {
		f.Directives = append(f.Directives, analyze.RawDirective{
			Text:     d,
			Location: diagnostic.Location{File: "command.go", Line: 1, Column: 5},
		})
	}

	return f
}

func commandType() *analyze.TypeDescriptor {
	str := analyze.Plain("string")

	return &analyze.TypeDescriptor{
		Name:    "Command",
		PkgName: "command",
		Fields: []analyze.FieldDescriptor{
			field("Executable", str),
			field("Args", analyze.Sequence(str), `builder(each = "arg")`),
			field("CurrentDir", analyze.Optional(str)),
		},
	}
}

func TestPlan_Command(t *testing.T) {
	bp, err := NewPlanner(nil).Plan(commandType())
	require.NoError(t, err)

	t.Log(spew.Sdump(bp.Fields))

	assert.Equal(t, "CommandBuilder", bp.BuilderName)
	assert.Equal(t, "NewCommandBuilder", bp.FactoryName)
	assert.Empty(t, bp.Warnings)
	require.Len(t, bp.Fields, 3)

	exe, args, dir := bp.Fields[0], bp.Fields[1], bp.Fields[2]

	assert.Equal(t, ClassRequired, exe.Class.Kind)
	assert.Equal(t, "executable", exe.Slot)
	assert.Equal(t, []string{"Executable"}, exe.Methods())

	assert.Equal(t, ClassRepeated, args.Class.Kind)
	assert.Equal(t, "args", args.Slot)
	assert.Equal(t, "Args", args.Setter)
	assert.Equal(t, "Arg", args.Appender)

	assert.Equal(t, ClassOptional, dir.Class.Kind)
	assert.Equal(t, "currentDir", dir.Slot)
	assert.Equal(t, "string", dir.Class.Type.Expr)
}

func TestPlan_Unexported(t *testing.T) {
	td := commandType()
	td.Name = "command"

	bp, err := NewPlanner(nil).Plan(td)
	require.NoError(t, err)
	assert.Equal(t, "commandBuilder", bp.BuilderName)
	assert.Equal(t, "newCommandBuilder", bp.FactoryName)
}

func TestPlan_AccessorMatchesSetter(t *testing.T) {
	td := &analyze.TypeDescriptor{Name: "Bag", Fields: []analyze.FieldDescriptor{
		field("Items", analyze.Sequence(analyze.Plain("int")), `builder(each = "items")`),
	}}

	bp, err := NewPlanner(nil).Plan(td)
	require.NoError(t, err)
	assert.Empty(t, bp.Fields[0].Setter)
	assert.Equal(t, []string{"Items"}, bp.Fields[0].Methods())
}

func TestPlan_KeywordSlots(t *testing.T) {
	td := &analyze.TypeDescriptor{Name: "Loop", Fields: []analyze.FieldDescriptor{
		field("Range", analyze.Plain("int")),
		field("Type", analyze.Plain("string")),
		field("Values", analyze.Sequence(analyze.Plain("int")), `builder(each = "func")`),
	}}

	bp, err := NewPlanner(nil).Plan(td)
	require.NoError(t, err)
	assert.Equal(t, "range_", bp.Fields[0].Slot)
	assert.Equal(t, "type_", bp.Fields[1].Slot)
	assert.Equal(t, "Func", bp.Fields[2].Appender)
}

func TestPlan_UniqueSlots(t *testing.T) {
	td := &analyze.TypeDescriptor{Name: "Server", Fields: []analyze.FieldDescriptor{
		field("URL", analyze.Plain("string")),
		field("url", analyze.Plain("string")),
	}}

	bp, err := NewPlanner(nil).Plan(td)
	require.NoError(t, err)
	assert.Equal(t, "url", bp.Fields[0].Slot)
	assert.Equal(t, "url2", bp.Fields[1].Slot)
}

func TestPlan_IgnoredDirective(t *testing.T) {
	td := &analyze.TypeDescriptor{Name: "Command", Fields: []analyze.FieldDescriptor{
		field("CurrentDir", analyze.Optional(analyze.Plain("string")), `builder(each = "dir")`),
	}}

	bp, err := NewPlanner(nil).Plan(td)
	require.NoError(t, err)
	require.Len(t, bp.Warnings, 1)

	w := bp.Warnings[0]
	assert.Equal(t, diagnostic.KindIgnoredDirective, w.Kind)
	assert.Equal(t, diagnostic.DiagnosticWarning, w.Severity)
	assert.Equal(t, "CurrentDir", w.Field)
	assert.Equal(t, ClassOptional, bp.Fields[0].Class.Kind)
	assert.Empty(t, bp.Fields[0].Appender)
}

func TestPlan_Errors(t *testing.T) {
	str := analyze.Plain("string")

	tests := []struct {
		name   string
		fields []analyze.FieldDescriptor
		kind   diagnostic.Kind
		field  string
	}{
		{
			name:   "malformed",
			fields: []analyze.FieldDescriptor{field("Args", analyze.Sequence(str), "builder(each = 1)")},
			kind:   diagnostic.KindMalformedDirective,
			field:  "Args",
		},
		{
			name:   "mismatch",
			fields: []analyze.FieldDescriptor{field("Executable", str, `builder(each = "x")`)},
			kind:   diagnostic.KindTypeMismatch,
			field:  "Executable",
		},
		{
			name: "malformed reported before mismatch",
			fields: []analyze.FieldDescriptor{
				field("Executable", str, `builder(each = "x")`),
				field("Args", analyze.Sequence(str), "builder"),
			},
			kind:  diagnostic.KindMalformedDirective,
			field: "Args",
		},
		{
			name:   "build setter",
			fields: []analyze.FieldDescriptor{field("Build", str)},
			kind:   diagnostic.KindNameCollision,
			field:  "Build",
		},
		{
			name:   "build appender",
			fields: []analyze.FieldDescriptor{field("Steps", analyze.Sequence(str), `builder(each = "build")`)},
			kind:   diagnostic.KindNameCollision,
			field:  "Steps",
		},
		{
			name: "appender collides with setter",
			fields: []analyze.FieldDescriptor{
				field("Arg", str),
				field("Args", analyze.Sequence(str), `builder(each = "arg")`),
			},
			kind:  diagnostic.KindNameCollision,
			field: "Args",
		},
		{
			name: "setters differ only in case",
			fields: []analyze.FieldDescriptor{
				field("name", str),
				field("Name", str),
			},
			kind:  diagnostic.KindNameCollision,
			field: "Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlanner(nil).Plan(&analyze.TypeDescriptor{Name: "Command", Fields: tt.fields})
			require.Error(t, err)

			d, ok := diagnostic.As(err)
			require.True(t, ok, "expected a diagnostic, got %v", err)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, "Command", d.TypeName)
			assert.Equal(t, tt.field, d.Field)
		})
	}
}
