// Package schema describes the fields of the game form: their types, labels,
// option lists, validation rules and conditional visibility. The schema is
// static data shared by the form engine and the filter bar.
package schema
