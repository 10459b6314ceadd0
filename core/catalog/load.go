package catalog

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/form"
)

// LoadFile reads form definitions from a YAML or JSON file shaped like:
//
//	forms:
//	  feedback:
//	    title: Course feedback
//	    initial: {rating: ""}
//	    rules:
//	      rating: [required, {type: pattern, regex: "^[1-5]$"}]
//	      comment: {type: maxLength, max: 500}
//	    sensitive: []
//
// Keys are case-insensitive (and come back lower-cased). Unknown rule names or bad
// params fail the whole load.
func LoadFile(path string, reg *form.Registry) (Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading forms file %s", path)
	}

	forms := v.GetStringMap("forms")
	c := make(Catalog, len(forms))
	for name := range forms {
		sub := v.Sub("forms." + name)
		if sub == nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "form %q is not an object", name)
		}

		rules, err := form.ParseRules(sub.GetStringMap("rules"))
		if err != nil {
			return nil, errors.Wrapf(err, "form %q", name)
		}
		d := Definition{
			Name:      name,
			Title:     sub.GetString("title"),
			Initial:   form.Values(sub.GetStringMap("initial")),
			Rules:     rules,
			Sensitive: sub.GetStringSlice("sensitive"),
		}.withDefaults()

		if err := d.Validate(reg); err != nil {
			return nil, err
		}
		c[name] = d
	}
	return c, nil
}

// Load returns the builtin forms, extended (or overridden) by the configured forms file.
func Load(conf *core.Config) (Catalog, error) {
	c := Builtin()
	if conf == nil || conf.Forms.File == "" {
		return c, nil
	}
	extra, err := LoadFile(conf.Forms.File, form.DefaultRegistry)
	if err != nil {
		return nil, err
	}
	return c.Merge(extra), nil
}
