package form

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseRules decodes rule specs from config (JSON/YAML), where each field maps to
// one rule or a list of rules, and a rule is either a name ("required") or an
// object whose "type" names the rule and whose other keys are its params
// ({type: minLength, min: 6}).
//
// ParseRules checks shapes only; use Registry.Check to find unknown rule names.
func ParseRules(raw map[string]interface{}) (Rules, error) {
	rules := make(Rules, len(raw))
	for field, spec := range raw {
		list, err := parseSpec(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", field)
		}
		rules[field] = list
	}
	return rules, nil
}

func parseSpec(spec interface{}) ([]Rule, error) {
	switch s := spec.(type) {
	case []interface{}:
		list := make([]Rule, 0, len(s))
		for i, item := range s {
			rule, err := parseRule(item)
			if err != nil {
				return nil, errors.Wrapf(err, "rule %d", i)
			}
			list = append(list, rule)
		}
		return list, nil
	case []string:
		list := make([]Rule, 0, len(s))
		for _, name := range s {
			list = append(list, Named(name))
		}
		return list, nil
	default:
		rule, err := parseRule(spec)
		if err != nil {
			return nil, err
		}
		return []Rule{rule}, nil
	}
}

func parseRule(item interface{}) (Rule, error) {
	switch r := item.(type) {
	case string:
		if r == "" {
			return Rule{}, errors.New("empty rule name")
		}
		return Named(r), nil
	case Rule:
		return r, nil
	case Validator:
		return Func(r), nil
	case func(interface{}) string:
		return Func(r), nil
	case map[string]interface{}:
		return parseObject(r)
	case map[interface{}]interface{}: // yaml.v2
		obj := make(map[string]interface{}, len(r))
		for k, v := range r {
			obj[fmt.Sprint(k)] = v
		}
		return parseObject(obj)
	default:
		return Rule{}, errors.Errorf("unsupported rule %T", item)
	}
}

func parseObject(obj map[string]interface{}) (Rule, error) {
	name, ok := obj["type"].(string)
	if !ok || name == "" {
		return Rule{}, errors.New(`rule object without a "type"`)
	}
	params := make(map[string]interface{}, len(obj)-1)
	for k, v := range obj {
		if k != "type" {
			params[k] = v
		}
	}
	return ParamMap(name, params), nil
}
