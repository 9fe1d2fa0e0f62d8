package filterstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Reserved query parameters.
const (
	ParamClass   = "cls"
	ParamFilters = "filters"
)

// Decoded is the result of decoding a URL.
type Decoded struct {
	// Base is the URL without its query string.
	Base string

	// Class is the cls parameter, if any.
	Class string

	State *State
}

// envelope is the JSON shape of the filters parameter.
type envelope struct {
	Filters []map[string]json.RawMessage `json:"filters"`
}

// Decode parses the query string of rawURL into a State.
//
// Decoding never fails as a whole: segments that cannot be decoded are
// skipped (or kept verbatim) and reported through the returned error, which
// joins one *ParseError per problem.
func Decode(rawURL string) (Decoded, error) {
	d := Decoded{Base: rawURL, State: New()}

	i := strings.IndexByte(rawURL, '?')
	if i <= 0 {
		return d, nil
	}
	d.Base = rawURL[:i]
	query, _, _ := strings.Cut(rawURL[i+1:], "#")

	var errs []error
	for _, seg := range strings.Split(query, "&") {
		if seg == "" {
			continue
		}
		eq := strings.IndexByte(seg, '=')
		switch {
		case eq < 0:
			errs = append(errs, &ParseError{Kind: MissingSeparator, Segment: seg})
			continue
		case eq == 0:
			errs = append(errs, &ParseError{Kind: EmptyKey, Segment: seg})
			continue
		}

		key, err := url.QueryUnescape(seg[:eq])
		if err != nil {
			errs = append(errs, &ParseError{Kind: BadEscape, Segment: seg, Err: err})
			key = seg[:eq]
		}
		value, err := url.QueryUnescape(seg[eq+1:])
		if err != nil {
			errs = append(errs, &ParseError{Kind: BadEscape, Segment: seg, Err: err})
			value = seg[eq+1:]
		}
		value = stripBrackets(strings.TrimSpace(value))

		switch key {
		case ParamClass:
			d.Class = value
		case ParamFilters:
			if err := expandFilters(d.State, value); err != nil {
				errs = append(errs, &ParseError{Kind: BadFiltersJSON, Segment: seg, Err: err})
				d.State.Set(key, value)
			}
		default:
			d.State.setDecoded(key, value)
		}
	}
	return d, errors.Join(errs...)
}

// stripBrackets removes one surrounding [...] layer.
func stripBrackets(v string) string {
	if len(v) >= 2 && v[0] == '[' && v[len(v)-1] == ']' {
		return v[1 : len(v)-1]
	}
	return v
}

// expandFilters merges a {"filters":[{...}]} payload into s. Entries are
// applied in key order so explicit shadow keys win over derived ones.
// Nothing is merged unless every entry is a scalar.
func expandFilters(s *State, value string) error {
	var env envelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		return err
	}
	if env.Filters == nil {
		return fmt.Errorf("missing filters array")
	}

	type entry struct{ key, value string }
	var entries []entry
	for _, obj := range env.Filters {
		for _, key := range slices.Sorted(maps.Keys(obj)) {
			v, err := scalarString(obj[key])
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			entries = append(entries, entry{key, v})
		}
	}
	for _, e := range entries {
		s.setDecoded(e.key, e.value)
	}
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	}
}

// FiltersJSON returns the {"filters":[state]} payload. Keys are sorted.
func FiltersJSON(s *State) string {
	payload := struct {
		Filters []map[string]string `json:"filters"`
	}{Filters: []map[string]string{s.Map()}}

	// A map[string]string always marshals.
	data, _ := json.Marshal(payload)
	return string(data)
}

// EncodeQuery returns "cls=<cls>&filters=<json>" with both values escaped.
func EncodeQuery(cls string, s *State) string {
	return ParamClass + "=" + url.QueryEscape(cls) +
		"&" + ParamFilters + "=" + url.QueryEscape(FiltersJSON(s))
}

// Encode returns base followed by the encoded query. Any query string
// already on base is replaced.
func Encode(base, cls string, s *State) string {
	if i := strings.IndexByte(base, '?'); i > 0 {
		base = base[:i]
	}
	return base + "?" + EncodeQuery(cls, s)
}
