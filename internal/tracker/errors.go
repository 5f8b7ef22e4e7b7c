package tracker

import "fmt"

// ValidationError is a row that decoded but cannot be accepted.
type ValidationError struct {
	Row     int    // 1-based data row; 0 when not tied to a row
	Field   string // column name, if any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return e.Message
}

// ImportError wraps the failure of importing one file so that callers can
// name the entity type in notifications.
type ImportError struct {
	Kind Kind
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("importing %s: %v", e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
