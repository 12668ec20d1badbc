package database

import (
	"errors"
	"fmt"
)

// ErrTimeout matches (via errors.Is) a QueryError raised because no pooled
// connection became available within the acquisition timeout.
var ErrTimeout = errors.New("connection pool acquisition timed out")

// ConnectionError means the store could not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("database unreachable: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError means the schema DDL was rejected for a reason other than the
// table already existing.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("schema initialization failed: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// QueryError wraps any failure of a single statement execution, including
// failing to obtain a connection for it.
type QueryError struct {
	Statement string
	Timeout   bool
	Err       error
}

func (e *QueryError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("query %q: %v", e.Statement, ErrTimeout)
	}
	return fmt.Sprintf("query %q: %v", e.Statement, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}
