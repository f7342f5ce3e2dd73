package series

import "fmt"

// SourceReadError reports that one entity's data could not be read or parsed.
// Callers skip the entity and continue with the rest.
type SourceReadError struct {
	Entity string
	Path   string
	Line   int // 1-based row in the source, 0 if not row-specific
	Err    error
}

func (e *SourceReadError) Error() string {
	where := e.Entity
	if e.Path != "" {
		where = e.Path
	}
	if e.Line > 0 {
		return fmt.Sprintf("reading %s line %d: %v", where, e.Line, e.Err)
	}
	return fmt.Sprintf("reading %s: %v", where, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
