package constants

// FieldKind tags the known shapes a field value can take. The extraction
// collaborator sends open-ended maps; internally every field is one of
// these kinds so conflict resolution can be exhaustive per kind.
type FieldKind string

const (
	FieldText   FieldKind = "TEXT"
	FieldMoney  FieldKind = "MONEY"
	FieldDate   FieldKind = "DATE"
	FieldSalary FieldKind = "SALARY"
)

// AllFieldKinds holds the accepted kind tags for payload validation.
var AllFieldKinds = []string{
	string(FieldText),
	string(FieldMoney),
	string(FieldDate),
	string(FieldSalary),
}

// SalaryFieldNames holds the field names treated as salary-shaped even
// when the extraction payload omits the SALARY kind tag.
var SalaryFieldNames = map[string]struct{}{
	"salary":       {},
	"salary_entry": {},
	"gross_salary": {},
	"net_salary":   {},
}

// IsSalaryField reports whether a field routes to the salary aggregator.
func IsSalaryField(name string, kind FieldKind) bool {
	if kind == FieldSalary {
		return true
	}
	_, ok := SalaryFieldNames[name]
	return ok
}
