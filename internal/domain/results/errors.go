package results

import "fmt"

// ColumnNotFoundError is returned when results are requested for a column that was never validated.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q was not validated", e.Column)
}
