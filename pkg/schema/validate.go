package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is the root of every schema decoding and validation error.
	ErrInvalidSchema = errors.New("schema: invalid schema")

	// ErrUnsupportedSource is returned for schema locations the loader cannot read.
	ErrUnsupportedSource = errors.New("schema: unsupported source")
)

// FieldError reports a structural problem with one field.
type FieldError struct {
	Index  int
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("schema: element %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("schema: element %d (%s): %s", e.Index, e.Key, e.Reason)
}

// Unwrap makes every FieldError match ErrInvalidSchema.
func (e *FieldError) Unwrap() error { return ErrInvalidSchema }

// Validate checks the schema for problems a renderer cannot recover from.
// Unknown field types are not errors here; see Unsupported.
func (s *Schema) Validate() error {
	if s == nil {
		return ErrInvalidSchema
	}

	var errs []error
	fail := func(i int, key, format string, args ...any) {
		errs = append(errs, &FieldError{Index: i, Key: key, Reason: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]int, len(s.Elements))
	for i, f := range s.Elements {
		if f.Key == "" {
			fail(i, "", "key is required")
			continue
		}
		if prev, dup := seen[f.Key]; dup {
			fail(i, f.Key, "duplicate key, first used by element %d", prev)
		}
		seen[f.Key] = i

		if f.Min != nil && f.Max != nil && f.Min.Float() > f.Max.Float() {
			fail(i, f.Key, "min %s is greater than max %s", f.Min, f.Max)
		}
		if f.Step != nil && f.Step.Float() <= 0 {
			fail(i, f.Key, "step must be positive")
		}

		switch f.Type {
		case FieldRating:
			if f.Max == nil {
				fail(i, f.Key, "RATING requires max")
			}
		case FieldImage:
			if f.Choices.Kind != ChoicesImages {
				fail(i, f.Key, "IMAGE requires {url,value} choices")
			}
		case FieldOptionList:
			if f.Choices.Kind != ChoicesList {
				fail(i, f.Key, "OPT_LIST requires a choice list")
			}
		case FieldCheckList:
			switch f.Choices.Kind {
			case ChoicesList:
			case ChoicesNested:
				if f.FilterBy == "" {
					fail(i, f.Key, "nested choices require filterBy")
				}
			default:
				fail(i, f.Key, "CHK_LIST requires a choice list or nested choices")
			}
		}
	}

	for i, f := range s.Elements {
		if f.FilterBy == "" {
			continue
		}
		if _, ok := seen[f.FilterBy]; !ok {
			fail(i, f.Key, "filterBy references unknown key %q", f.FilterBy)
		}
	}

	return errors.Join(errs...)
}
