package form

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/gamevault/pkg/schema"
)

// MaxTagSuggestions bounds the result of TagSuggestions.
const MaxTagSuggestions = 10

func (f *Form) tagField(name string) ([]string, error) {
	fd, ok := f.fields.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if fd.Type != schema.TypeTags {
		return nil, fmt.Errorf("%w: %s", ErrNotTagField, name)
	}
	tags, _ := f.values[name].([]string)
	return tags, nil
}

// CommitTag appends the trimmed input to the tag field name unless the exact
// tag is already present. It returns the new input buffer: empty after a
// commit, unchanged otherwise.
func (f *Form) CommitTag(name, input string) (string, error) {
	tags, err := f.tagField(name)
	if err != nil {
		return input, err
	}
	tag := strings.TrimSpace(input)
	if tag == "" || containsExact(tags, tag) {
		return input, nil
	}
	next := append(append([]string{}, tags...), tag)
	f.values[name] = next
	f.dirty[name] = true
	return "", nil
}

// HandleTagKey processes a key pressed inside the tag input of name. Enter,
// Tab and comma commit the buffer. suppressSubmit is true for Enter, which
// must not submit the enclosing form.
func (f *Form) HandleTagKey(name, key, buffer string) (next string, suppressSubmit bool, err error) {
	switch key {
	case "Enter", "Tab", ",":
		next, err = f.CommitTag(name, strings.TrimSuffix(buffer, ","))
		return next, key == "Enter", err
	default:
		return buffer, false, nil
	}
}

// TypeTagInput feeds text into the tag input of name the way typing it would:
// every comma commits the text before it. Pieces that are blank or already
// present are dropped. It returns the text after the last comma, which is
// still uncommitted.
func (f *Form) TypeTagInput(name, text string) (string, error) {
	for {
		i := strings.IndexByte(text, ',')
		if i < 0 {
			return text, nil
		}
		if _, _, err := f.HandleTagKey(name, ",", text[:i+1]); err != nil {
			return text, err
		}
		text = text[i+1:]
	}
}

// RemoveTag drops the exact tag from the tag field name.
func (f *Form) RemoveTag(name, tag string) error {
	tags, err := f.tagField(name)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			next = append(next, t)
		}
	}
	f.values[name] = next
	f.dirty[name] = true
	f.touched[name] = true
	return nil
}

// TagSuggestions returns up to MaxTagSuggestions tags from universe that
// contain query, ignoring case, and are not already on the field.
func (f *Form) TagSuggestions(name, query string, universe []string) ([]string, error) {
	tags, err := f.tagField(name)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	existing := make(map[string]bool, len(tags))
	for _, t := range tags {
		existing[fold.String(t)] = true
	}
	q := fold.String(query)
	out := []string{}
	for _, u := range universe {
		fu := fold.String(u)
		if existing[fu] || !strings.Contains(fu, q) {
			continue
		}
		out = append(out, u)
		if len(out) == MaxTagSuggestions {
			break
		}
	}
	return out, nil
}
