package widget

import "fmt"

// UnsupportedFieldError reports a field whose type has no control.
type UnsupportedFieldError struct {
	Index int    // Position in the schema's element list
	Key   string // Field key
	Type  string // Type name as written in the schema
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("widget: unsupported filter type %q for element %d (key %q)", e.Type, e.Index, e.Key)
}

// Report describes what a render pass skipped.
type Report struct {
	Unsupported []*UnsupportedFieldError
}

// Err returns the first skipped field as an error, or nil.
func (r Report) Err() error {
	if len(r.Unsupported) == 0 {
		return nil
	}
	return r.Unsupported[0]
}
