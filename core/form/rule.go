package form

import (
	"fmt"
	"regexp"
)

// Validator checks a single field value and returns an error message,
// or "" when the value passes.
type Validator func(value interface{}) string

type ruleKind int

const (
	kindNamed ruleKind = iota + 1
	kindParameterized
	kindPredicate
)

func (k ruleKind) String() string {
	switch k {
	case kindNamed:
		return "named"
	case kindParameterized:
		return "parameterized"
	case kindPredicate:
		return "predicate"
	default:
		return "invalid"
	}
}

// Rule references one check of a field's rule list. It is one of:
//   - a named built-in (Named("required")),
//   - a parameterized built-in (Param("minLength", 6)),
//   - an inline predicate (Func(fn)).
//
// The zero Rule references nothing and is skipped during validation.
type Rule struct {
	kind   ruleKind
	name   string
	args   []interface{}          // positional params
	kwargs map[string]interface{} // keyed params, decoded from config
	fn     Validator
}

// Named references a registered rule by name.
func Named(name string) Rule {
	return Rule{kind: kindNamed, name: name}
}

// Param references a registered rule factory, invoked with params in order.
func Param(name string, params ...interface{}) Rule {
	return Rule{kind: kindParameterized, name: name, args: params}
}

// ParamMap references a registered rule factory with keyed params.
// The params are passed in the order the rule declares them.
func ParamMap(name string, params map[string]interface{}) Rule {
	return Rule{kind: kindParameterized, name: name, kwargs: params}
}

// Func wraps an inline predicate.
func Func(fn Validator) Rule {
	return Rule{kind: kindPredicate, fn: fn}
}

// Name returns the referenced rule name ("" for predicates).
func (r Rule) Name() string { return r.name }

func (r Rule) String() string {
	switch r.kind {
	case kindNamed:
		return r.name
	case kindParameterized:
		if r.kwargs != nil {
			return fmt.Sprintf("%s%v", r.name, r.kwargs)
		}
		return fmt.Sprintf("%s%v", r.name, r.args)
	case kindPredicate:
		return "func"
	default:
		return "<invalid>"
	}
}

// Shorthands for the built-in registry.
var (
	Required = Named(RuleRequired)
	Email    = Named(RuleEmail)
	Phone    = Named(RulePhone)
	URL      = Named(RuleURL)
)

func MinLength(n int) Rule { return Param(RuleMinLength, n) }

func MaxLength(n int) Rule { return Param(RuleMaxLength, n) }

// Pattern fails values not matching re. An optional message overrides "Invalid format".
func Pattern(re *regexp.Regexp, message ...string) Rule {
	params := []interface{}{re}
	if len(message) > 0 {
		params = append(params, message[0])
	}
	return Param(RulePattern, params...)
}

// Custom delegates to fn through the registry's "custom" rule.
func Custom(fn Validator) Rule { return Param(RuleCustom, fn) }

// Rules maps field names to their ordered rule lists.
// Fields absent from the map are never validated.
type Rules map[string][]Rule

// Fields returns the field names that carry rules.
func (rs Rules) Fields() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	return names
}

// Clone returns a shallow copy of rs.
func (rs Rules) Clone() Rules {
	cp := make(Rules, len(rs))
	for field, rules := range rs {
		cp[field] = append([]Rule(nil), rules...)
	}
	return cp
}
