package form

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownRule = errors.New("unknown rule")
	ErrRuleParams  = errors.New("invalid rule params")
	ErrRuleExists  = errors.New("rule already registered")
)

// Factory builds a Validator from rule params.
// Rules without params are built with none.
type Factory func(params ...interface{}) (Validator, error)

type registryEntry struct {
	params  []string
	factory Factory
}

// Registry resolves rule references to validators.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
	builtin map[string]bool
}

// DefaultRegistry holds the built-in rules. Forms use it unless WithRegistry is given.
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry holding the built-in rules.
func NewRegistry() *Registry {
	reg := &Registry{
		entries: make(map[string]registryEntry, len(builtins)),
		builtin: make(map[string]bool, len(builtins)),
	}
	for name, entry := range builtins {
		reg.entries[name] = entry
		reg.builtin[name] = true
	}
	return reg
}

// Register adds an application rule. params names the factory params in order;
// keyed params decoded from config are passed in that order.
// Built-in rules cannot be overridden.
func (reg *Registry) Register(name string, params []string, factory Factory) error {
	if name == "" || factory == nil {
		return errors.Wrap(ErrRuleParams, "registering rule: empty name or nil factory")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.builtin[name] {
		return errors.Wrapf(ErrRuleExists, "registering rule %q", name)
	}
	reg.entries[name] = registryEntry{params: append([]string(nil), params...), factory: factory}
	return nil
}

// Names returns the sorted names of all registered rules.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.entries))
	for name := range reg.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (reg *Registry) lookup(name string) (registryEntry, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	entry, ok := reg.entries[name]
	return entry, ok
}

// Resolve turns a rule reference into a Validator.
func (reg *Registry) Resolve(rule Rule) (Validator, error) {
	switch rule.kind {
	case kindPredicate:
		if rule.fn == nil {
			return nil, errors.Wrap(ErrRuleParams, "nil predicate")
		}
		return rule.fn, nil

	case kindNamed, kindParameterized:
		entry, ok := reg.lookup(rule.name)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownRule, "%q", rule.name)
		}
		params := rule.args
		if rule.kwargs != nil {
			var err error
			if params, err = orderParams(entry.params, rule.kwargs); err != nil {
				return nil, errors.Wrapf(err, "rule %q", rule.name)
			}
		}
		v, err := entry.factory(params...)
		if err != nil {
			return nil, errors.Wrapf(err, "building rule %q", rule.name)
		}
		if v == nil {
			return nil, errors.Wrapf(ErrRuleParams, "rule %q built no validator", rule.name)
		}
		return v, nil

	default:
		return nil, errors.Wrap(ErrUnknownRule, "empty rule reference")
	}
}

// orderParams lays keyed params out in declaration order, up to the last one present.
// A single key that matches no declared name takes the first slot when no key
// matched, or else the only unfilled slot: {type: minLength, length: 8} reads as
// min=8. Any other unknown key is rejected.
func orderParams(names []string, kwargs map[string]interface{}) ([]interface{}, error) {
	slots := make([]interface{}, len(names))
	filled := make([]bool, len(names))
	declared := make(map[string]int, len(names))
	for i, name := range names {
		declared[name] = i
	}

	var unknown []string
	for key, v := range kwargs {
		if i, ok := declared[key]; ok {
			slots[i], filled[i] = v, true
			continue
		}
		unknown = append(unknown, key)
	}

	if len(unknown) > 0 {
		var open []int
		for i := range names {
			if !filled[i] {
				open = append(open, i)
			}
		}
		positional := len(unknown) == len(kwargs)
		if len(unknown) > 1 || len(open) == 0 || (len(open) > 1 && !positional) {
			sort.Strings(unknown)
			return nil, errors.Wrapf(ErrRuleParams, "unknown params %s (declared: %s)",
				strings.Join(unknown, ", "), strings.Join(names, ", "))
		}
		slots[open[0]], filled[open[0]] = kwargs[unknown[0]], true
	}

	last := -1
	for i := range names {
		if filled[i] {
			last = i
		}
	}
	return slots[:last+1], nil
}

// UnresolvedError lists rule references that cannot be resolved.
type UnresolvedError struct {
	Problems []string
}

func (e *UnresolvedError) Error() string {
	return "unresolvable rules: " + strings.Join(e.Problems, "; ")
}

// Check reports every rule reference in rules that Resolve would reject.
// Validation itself skips such references silently; Check is meant for
// load time, where a typo'd rule name should fail loudly.
func (reg *Registry) Check(rules Rules) error {
	fields := rules.Fields()
	sort.Strings(fields)

	var problems []string
	for _, field := range fields {
		for i, rule := range rules[field] {
			if _, err := reg.Resolve(rule); err != nil {
				problems = append(problems, fmt.Sprintf("%s[%d] %s: %v", field, i, rule, err))
			}
		}
	}
	if len(problems) > 0 {
		return &UnresolvedError{Problems: problems}
	}
	return nil
}
