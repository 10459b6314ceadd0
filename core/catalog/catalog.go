// Package catalog holds the named forms the service knows how to validate and store.
package catalog

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core/form"
)

var ErrInvalidDefinition = errors.New("invalid form definition")

// Definition describes one named form: its initial values, rules and the fields
// whose values are secrets (hashed before storage, never echoed back).
type Definition struct {
	Name      string
	Title     string
	Initial   form.Values
	Rules     form.Rules
	Sensitive []string

	// Normalize rewrites accepted values before they are stored.
	Normalize map[string]func(interface{}) interface{}
}

// NewForm returns a fresh engine form for the definition.
func (d Definition) NewForm(opts ...form.Option) *form.Form {
	return form.New(d.Initial, d.Rules, opts...)
}

// Fields returns the sorted names of every field that has an initial value or rules.
func (d Definition) Fields() []string {
	seen := make(map[string]bool, len(d.Initial)+len(d.Rules))
	for field := range d.Initial {
		seen[field] = true
	}
	for field := range d.Rules {
		seen[field] = true
	}
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (d Definition) IsSensitive(field string) bool {
	for _, f := range d.Sensitive {
		if f == field {
			return true
		}
	}
	return false
}

// Validate checks that the definition is named and that every rule resolves.
func (d Definition) Validate(reg *form.Registry) error {
	if d.Name == "" {
		return errors.Wrap(ErrInvalidDefinition, "empty name")
	}
	if reg == nil {
		reg = form.DefaultRegistry
	}
	if err := reg.Check(d.Rules); err != nil {
		return errors.Wrapf(err, "form %q", d.Name)
	}
	return nil
}

// withDefaults fills in what a loaded definition may leave out: a title, and an
// empty initial value for every field that has rules.
func (d Definition) withDefaults() Definition {
	if d.Title == "" {
		d.Title = d.Name
	}
	initial := make(form.Values, len(d.Initial)+len(d.Rules))
	for field := range d.Rules {
		initial[field] = ""
	}
	for field, v := range d.Initial {
		initial[field] = v
	}
	d.Initial = initial
	return d
}

// Catalog maps form names to definitions.
type Catalog map[string]Definition

func (c Catalog) Get(name string) (Definition, bool) {
	d, ok := c[name]
	return d, ok
}

func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge adds the definitions of other to c, replacing those with the same name.
func (c Catalog) Merge(other Catalog) Catalog {
	for name, d := range other {
		c[name] = d
	}
	return c
}
