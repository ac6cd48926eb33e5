package schema

import (
	"errors"
	"fmt"
)

// FieldType is the declared editor type of a field.
type FieldType string

// Field types.
const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeTags     FieldType = "tags"
	TypeCheckbox FieldType = "checkbox"
	TypeRating   FieldType = "rating"
	TypeImage    FieldType = "image"
)

// Option is one selectable label/value pair.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rules are the validation rules of a field. Zero values are inactive.
type Rules struct {
	Required  bool     `json:"required,omitempty"`
	MinLength int      `json:"minLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// ShowWhen makes a field visible only while another field equals Value.
type ShowWhen struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Field describes one editable attribute of a record.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Rules       Rules     `json:"rules"`
	ShowWhen    *ShowWhen `json:"showWhen,omitempty"`
}

// Schema is an ordered list of fields.
type Schema []Field

// ErrDuplicateField is returned by Validate when two fields share a name.
var ErrDuplicateField = errors.New("duplicate field name")

// Field returns the field called name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Validate reports the first duplicated field name.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if seen[f.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// OptionsFor returns the options of the named field with repeated values
// collapsed to their first occurrence. It returns nil for unknown fields and
// fields without options.
func (s Schema) OptionsFor(name string) []Option {
	f, ok := s.Field(name)
	if !ok || len(f.Options) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(f.Options))
	out := make([]Option, 0, len(f.Options))
	for _, o := range f.Options {
		if seen[o.Value] {
			continue
		}
		seen[o.Value] = true
		out = append(out, o)
	}
	return out
}

// LabelFor returns the label of the option whose value is value, or value
// itself when the field has no such option.
func (s Schema) LabelFor(name, value string) string {
	f, ok := s.Field(name)
	if !ok {
		return value
	}
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
