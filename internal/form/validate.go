package form

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/pkg/schema"
)

// Rule names reported in Issue.Rule.
const (
	RuleRequired  = "required"
	RuleMinLength = "minlength"
	RuleMin       = "min"
	RuleMax       = "max"
)

// Translator formats a localized message.
type Translator interface {
	T(key string, args ...any) string
}

// Issue is one failed rule on a field.
type Issue struct {
	Rule  string
	Param any
}

var ruleValidate = validator.New()

// Issues returns the failed rules of name in the order required, minimum
// length, minimum, maximum. Hidden fields are validated like visible ones.
func (f *Form) Issues(name string) []Issue {
	fd, ok := f.fields.Field(name)
	if !ok {
		return nil
	}
	return check(fd, f.values[name])
}

// FieldInvalid reports whether name fails a rule and has been touched.
func (f *Form) FieldInvalid(name string) bool {
	return f.touched[name] && len(f.Issues(name)) > 0
}

// Invalid reports whether any field fails a rule.
func (f *Form) Invalid() bool {
	for _, fd := range f.fields {
		if len(check(fd, f.values[fd.Name])) > 0 {
			return true
		}
	}
	return false
}

// ErrorMessage returns the localized message of the first failed rule of
// name, or "" when the field is valid or untouched.
func (f *Form) ErrorMessage(name string, tr Translator) string {
	if !f.touched[name] {
		return ""
	}
	issues := f.Issues(name)
	if len(issues) == 0 {
		return ""
	}
	is := issues[0]
	switch is.Rule {
	case RuleRequired:
		return tr.T(i18n.KeyRequired)
	case RuleMinLength:
		return tr.T(i18n.KeyMinLength, is.Param)
	case RuleMin:
		return tr.T(i18n.KeyMin, formatParam(is.Param))
	case RuleMax:
		return tr.T(i18n.KeyMax, formatParam(is.Param))
	default:
		return tr.T(i18n.KeyInvalid)
	}
}

func check(fd schema.Field, v any) []Issue {
	var issues []Issue
	if isEmpty(v) {
		if fd.Rules.Required {
			issues = append(issues, Issue{Rule: RuleRequired})
		}
		// Length and range rules only apply to present values.
		return issues
	}
	if fd.Rules.MinLength > 0 {
		if n, ok := length(v); ok && ruleValidate.Var(n, "gte="+strconv.Itoa(fd.Rules.MinLength)) != nil {
			issues = append(issues, Issue{Rule: RuleMinLength, Param: fd.Rules.MinLength})
		}
	}
	if n, ok := toNumber(v); ok {
		if fd.Rules.Min != nil && ruleValidate.Var(n, "gte="+formatFloat(*fd.Rules.Min)) != nil {
			issues = append(issues, Issue{Rule: RuleMin, Param: *fd.Rules.Min})
		}
		if fd.Rules.Max != nil && ruleValidate.Var(n, "lte="+formatFloat(*fd.Rules.Max)) != nil {
			issues = append(issues, Issue{Rule: RuleMax, Param: *fd.Rules.Max})
		}
	}
	return issues
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

// length counts UTF-16 code units like a browser input does.
func length(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		n := 0
		for _, r := range t {
			if r >= 0x10000 {
				n += 2
			} else {
				n++
			}
		}
		return n, true
	case []string:
		return len(t), true
	default:
		return 0, false
	}
}

func formatParam(p any) string {
	if f, ok := p.(float64); ok {
		return formatFloat(f)
	}
	return fmt.Sprint(p)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
