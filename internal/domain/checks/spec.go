package checks

// Spec is the validated, strongly typed parameter record of one test kind.
// A Spec is produced once at load time and can build any number of Tests.
type Spec interface {
	// Kind returns the canonical kind identifier.
	Kind() string

	// Describe returns a short human readable summary used as the default binding name.
	Describe() string

	// Build returns a guarded Test bound to the given column.
	Build(column string) (Test, error)
}

// Kind identifiers of the built-in tests.
const (
	KindMatch    = "match_test"
	KindInRange  = "in_range_test"
	KindInList   = "in_list_test"
	KindNotEqual = "not_equal_test"
	KindType     = "type_test"
	KindExpr     = "expr_test"
)
