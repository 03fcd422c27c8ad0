package plan

import (
	"go.uber.org/zap"

	"builder-generator/internal/analyze"
	"builder-generator/internal/common"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/directive"
)

// BuildMethod is the name of the validating construction method.
const BuildMethod = "Build"

// BuilderPlan is everything code generation needs for one record type.
type BuilderPlan struct {
	// Type is the record being built.
	Type *analyze.TypeDescriptor
	// BuilderName is the generated builder type, e.g. "CommandBuilder".
	BuilderName string
	// FactoryName is the generated constructor, e.g. "NewCommandBuilder".
	FactoryName string
	// Fields are planned in declaration order.
	Fields []FieldPlan
	// Warnings are non-fatal diagnostics found while planning.
	Warnings []diagnostic.Diagnostic
}

// FieldPlan is the planned storage and method set of one field.
type FieldPlan struct {
	Field analyze.FieldDescriptor
	Class Classification
	// Slot is the builder struct field holding the value.
	Slot string
	// Setter replaces the whole slot; empty when suppressed.
	Setter string
	// Appender pushes one element; repeated fields only.
	Appender string
}

// Methods lists the generated method names of the field.
func (f FieldPlan) Methods() []string {
	var names []string
	if f.Setter != "" {
		names = append(names, f.Setter)
	}

	if f.Appender != "" {
		names = append(names, f.Appender)
	}

	return names
}

// Planner runs the planning pipeline.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a new Planner.
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Planner{logger: logger}
}

// Plan parses directives, classifies fields and names the generated members.
// Each stage completes for all fields before the next starts, and the first
// diagnostic is returned.
func (p *Planner) Plan(td *analyze.TypeDescriptor) (*BuilderPlan, error) {
	directives := make([]*directive.AttributeDirective, len(td.Fields))

	for i, f := range td.Fields {
		d, err := directive.Parse(f.Directives)
		if err != nil {
			return nil, subject(err, td, f)
		}

		directives[i] = d
	}

	bp := &BuilderPlan{
		Type:        td,
		BuilderName: td.Name + "Builder",
		FactoryName: "New" + common.ExportName(td.Name) + "Builder",
	}

	if !td.Exported() {
		bp.FactoryName = "new" + common.ExportName(td.Name) + "Builder"
	}

	for i, f := range td.Fields {
		class, err := Classify(f, directives[i])
		if err != nil {
			return nil, subject(err, td, f)
		}

		if class.Kind == ClassOptional && directives[i] != nil {
			w := diagnostic.New(diagnostic.KindIgnoredDirective, directives[i].Location,
				"builder directive has no effect on optional field %s", f.Name).WithSubject(td.Name, f.Name)
			w.Severity = diagnostic.DiagnosticWarning
			bp.Warnings = append(bp.Warnings, w)

			p.logger.Warn("ignoring builder directive on optional field",
				zap.String("type", td.Name), zap.String("field", f.Name))
		}

		p.logger.Debug("classified field",
			zap.String("type", td.Name),
			zap.String("field", f.Name),
			zap.Stringer("class", class.Kind),
			zap.String("type_expr", class.Type.Expr))

		bp.Fields = append(bp.Fields, FieldPlan{Field: f, Class: class})
	}

	assignNames(bp)

	if err := checkCollisions(bp); err != nil {
		return nil, err
	}

	return bp, nil
}

// assignNames derives method and slot names. A repeated field whose accessor
// method equals its setter only gets the append method. Slots never reuse a
// method name.
func assignNames(bp *BuilderPlan) {
	var ns common.Namespace

	for i := range bp.Fields {
		fp := &bp.Fields[i]

		fp.Setter = common.ExportName(fp.Field.Name)

		if fp.Class.Kind == ClassRepeated {
			fp.Appender = common.ExportName(fp.Class.Accessor)
			if fp.Appender == fp.Setter {
				fp.Setter = ""
			}
		}

		ns.Reserve(fp.Methods()...)
	}

	for i := range bp.Fields {
		fp := &bp.Fields[i]
		fp.Slot = ns.Claim(common.SafeIdent(common.LowerCamel(fp.Field.Name)))
	}
}

func checkCollisions(bp *BuilderPlan) error {
	owners := make(map[string]string)

	for _, fp := range bp.Fields {
		for _, m := range fp.Methods() {
			if m == BuildMethod {
				return diagnostic.New(diagnostic.KindNameCollision, fp.Field.Location,
					"field %s would generate method %s, which is reserved for construction", fp.Field.Name, m).
					WithSubject(bp.Type.Name, fp.Field.Name)
			}

			if owner, taken := owners[m]; taken {
				return diagnostic.New(diagnostic.KindNameCollision, fp.Field.Location,
					"method %s of field %s collides with a method of field %s", m, fp.Field.Name, owner).
					WithSubject(bp.Type.Name, fp.Field.Name)
			}

			owners[m] = fp.Field.Name
		}
	}

	return nil
}

func subject(err error, td *analyze.TypeDescriptor, f analyze.FieldDescriptor) error {
	if d, ok := diagnostic.As(err); ok {
		return d.WithSubject(td.Name, f.Name)
	}

	return err
}
