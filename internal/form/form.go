// Package form implements the schema-driven form engine: it turns a field
// schema and an initial record into an editable draft, tracks validity,
// touched and dirty state per field, and converts a valid draft back into a
// plain record on submit. The engine never persists anything.
package form

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/gamevault/pkg/schema"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// Form errors.
var (
	ErrInvalid      = errors.New("form is invalid")
	ErrUnknownField = errors.New("unknown field")
	ErrNotTagField  = errors.New("field is not a tag field")
)

// Form is the live draft of one record.
type Form struct {
	fields  schema.Schema
	values  map[string]any
	touched map[string]bool
	dirty   map[string]bool
}

// New builds a draft from fields and an optional initial bag of values.
// Fields missing from initial take their type default: false for checkboxes,
// an empty list for tags and nil otherwise.
func New(fields schema.Schema, initial map[string]any) *Form {
	f := &Form{
		fields:  fields,
		values:  make(map[string]any, len(fields)),
		touched: make(map[string]bool, len(fields)),
		dirty:   make(map[string]bool, len(fields)),
	}
	for _, fd := range fields {
		v, ok := initial[fd.Name]
		if !ok {
			v = nil
		}
		f.values[fd.Name] = normalize(fd.Type, v)
	}
	return f
}

// Fields returns the schema the form was built from.
func (f *Form) Fields() schema.Schema {
	return f.fields
}

// Value returns the current draft value of name.
func (f *Form) Value(name string) any {
	return f.values[name]
}

// Values returns a copy of the draft.
func (f *Form) Values() map[string]any {
	return maps.Clone(f.values)
}

// Set replaces the value of name and marks the field dirty and touched.
func (f *Form) Set(name string, v any) error {
	fd, ok := f.fields.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.values[name] = normalize(fd.Type, v)
	f.dirty[name] = true
	f.touched[name] = true
	return nil
}

// SetInput converts raw HTML form values for name into the field's typed
// value and sets it.
func (f *Form) SetInput(name string, raw []string) error {
	fd, ok := f.fields.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f.Set(name, parseInput(fd.Type, raw))
}

// Touch marks name as touched so that its errors are reported.
func (f *Form) Touch(name string) {
	if _, ok := f.fields.Field(name); ok {
		f.touched[name] = true
	}
}

// TouchAll marks every field as touched.
func (f *Form) TouchAll() {
	for _, fd := range f.fields {
		f.touched[fd.Name] = true
	}
}

// Touched reports whether name has been touched.
func (f *Form) Touched(name string) bool {
	return f.touched[name]
}

// Dirty reports whether name has been changed since the form was built.
func (f *Form) Dirty(name string) bool {
	return f.dirty[name]
}

// Visible reports whether name is shown for the current draft. A field whose
// condition references a field missing from the schema is never visible.
func (f *Form) Visible(name string) bool {
	fd, ok := f.fields.Field(name)
	if !ok {
		return false
	}
	if fd.ShowWhen == nil {
		return true
	}
	if _, ok := f.fields.Field(fd.ShowWhen.Field); !ok {
		return false
	}
	return equalValue(f.values[fd.ShowWhen.Field], fd.ShowWhen.Value)
}

// Required reports whether name carries the required rule.
func (f *Form) Required(name string) bool {
	fd, ok := f.fields.Field(name)
	return ok && fd.Rules.Required
}

// Submit returns the draft as a plain record: dates as YYYY-MM-DD strings,
// tags as string lists, everything else unchanged. When the draft is invalid
// every field is marked touched and ErrInvalid is returned.
func (f *Form) Submit() (map[string]any, error) {
	if f.Invalid() {
		f.TouchAll()
		return nil, ErrInvalid
	}
	out := make(map[string]any, len(f.values))
	for _, fd := range f.fields {
		v := f.values[fd.Name]
		switch t := v.(type) {
		case time.Time:
			out[fd.Name] = t.Format(types.DateLayout)
		case []string:
			out[fd.Name] = append([]string{}, t...)
		default:
			out[fd.Name] = v
		}
	}
	return out, nil
}

// RatingDisplay renders the value of a rating field as "value/max".
func (f *Form) RatingDisplay(name string, max int) string {
	n, ok := toFloat(f.values[name])
	if !ok {
		return "0/" + strconv.Itoa(max)
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + "/" + strconv.Itoa(max)
}

// ImageURL returns the displayable source of an image field.
func (f *Form) ImageURL(name string) (string, bool) {
	s, _ := f.values[name].(string)
	return ClassifyImage(s)
}

// DateString returns the value of a date field as YYYY-MM-DD, or "".
func (f *Form) DateString(name string) string {
	if t, ok := f.values[name].(time.Time); ok {
		return t.Format(types.DateLayout)
	}
	return ""
}

// normalize coerces v into the representation the engine keeps for typ.
func normalize(typ schema.FieldType, v any) any {
	switch typ {
	case schema.TypeCheckbox:
		switch t := v.(type) {
		case bool:
			return t
		case string:
			b, _ := strconv.ParseBool(t)
			return b
		default:
			return false
		}
	case schema.TypeTags:
		return toTags(v)
	case schema.TypeDate:
		switch t := v.(type) {
		case time.Time:
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		case string:
			if d, ok := parseDate(t); ok {
				return d
			}
			return nil
		default:
			return nil
		}
	case schema.TypeNumber, schema.TypeRating:
		if n, ok := toFloat(v); ok {
			return n
		}
		return nil
	default:
		return v
	}
}

// parseDate accepts YYYY-MM-DD and full timestamps, keeping the calendar
// date only.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(types.DateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(types.DateLayout, s[:len(types.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func toTags(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...)
	case types.TagList:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		return []string(types.SplitTags(t))
	default:
		return []string{}
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case *float64:
		if t == nil {
			return 0, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func equalValue(a, b any) bool {
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && an == bn
	}
	switch at := a.(type) {
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case nil:
		return b == nil
	default:
		return false
	}
}

func toNumber(v any) (float64, bool) {
	switch v.(type) {
	case float64, float32, int, int64:
		return toFloat(v)
	}
	return 0, false
}

// parseInput converts the submitted strings of an HTML control.
func parseInput(typ schema.FieldType, raw []string) any {
	first := ""
	if len(raw) > 0 {
		first = raw[0]
	}
	switch typ {
	case schema.TypeCheckbox:
		for _, r := range raw {
			switch strings.ToLower(strings.TrimSpace(r)) {
			case "on", "true", "1":
				return true
			}
		}
		return false
	case schema.TypeTags:
		out := []string{}
		for _, r := range raw {
			for _, tag := range types.SplitTags(r) {
				if !containsExact(out, tag) {
					out = append(out, tag)
				}
			}
		}
		return out
	case schema.TypeNumber, schema.TypeRating:
		if n, ok := toFloat(first); ok {
			return n
		}
		return nil
	case schema.TypeDate:
		if d, ok := parseDate(first); ok {
			return d
		}
		return nil
	default:
		return first
	}
}

func containsExact(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
