package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core"
)

// Built-in rule names.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePhone     = "phone"
	RuleURL       = "url"
	RulePattern   = "pattern"
	RuleCustom    = "custom"
)

var (
	// custom validation tags & texts
	emailTag   = "formemail"
	emailText  = "Please enter a valid email address"
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	phoneTag   = "formphone"
	phoneText  = "Please enter a valid phone number"
	phoneRegex = regexp.MustCompile(`^[+]*[(]{0,1}[0-9]{1,4}[)]{0,1}[-\s./0-9]*$`)

	urlTag = "url"

	// message keys
	msgRequired  = "form.required"
	msgMinLength = "form.minLength"
	msgMaxLength = "form.maxLength"
	msgURL       = "form.url"
	msgPattern   = "form.pattern"

	builtins = map[string]registryEntry{
		RuleRequired:  {factory: noParams(required)},
		RuleEmail:     {factory: noParams(email)},
		RuleMinLength: {params: []string{"min"}, factory: minLength},
		RuleMaxLength: {params: []string{"max"}, factory: maxLength},
		RulePhone:     {factory: noParams(phone)},
		RuleURL:       {factory: noParams(url)},
		RulePattern:   {params: []string{"regex", "message"}, factory: pattern},
		RuleCustom:    {params: []string{"validator"}, factory: custom},
	}
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(emailTag, emailValidation)
	core.RegisterCustomTranslation(emailTag, emailText)
	_ = core.Validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(phoneTag, phoneText)

	_ = core.AddTranslation(msgRequired, "This field is required")
	_ = core.AddTranslation(msgMinLength, "Minimum {0} characters required")
	_ = core.AddTranslation(msgMaxLength, "Maximum {0} characters allowed")
	_ = core.AddTranslation(msgURL, "Please enter a valid URL")
	_ = core.AddTranslation(msgPattern, "Invalid format")
}

// Custom Validators

func emailValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// IsEmpty reports whether value counts as absent: nil or the empty string.
// Every built-in except "required" passes empty values.
func IsEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// ToString renders value the way the built-in rules read it. nil gives "",
// floats (JSON numbers) print without an exponent and anything else goes
// through fmt.Sprint.
func ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func noParams(v Validator) Factory {
	return func(params ...interface{}) (Validator, error) {
		if len(params) > 0 {
			return nil, errors.Wrapf(ErrRuleParams, "expected no params, got %d", len(params))
		}
		return v, nil
	}
}

func required(value interface{}) string {
	if IsEmpty(value) {
		return core.Translate(msgRequired)
	}
	return ""
}

func email(value interface{}) string {
	if IsEmpty(value) {
		return ""
	}
	if err := core.Validate.Var(ToString(value), emailTag); err != nil {
		return core.Translate(emailTag)
	}
	return ""
}

func phone(value interface{}) string {
	if IsEmpty(value) {
		return ""
	}
	if err := core.Validate.Var(ToString(value), phoneTag); err != nil {
		return core.Translate(phoneTag)
	}
	return ""
}

func url(value interface{}) string {
	if IsEmpty(value) {
		return ""
	}
	if err := core.Validate.Var(strings.TrimSpace(ToString(value)), urlTag); err != nil {
		return core.Translate(msgURL)
	}
	return ""
}

func minLength(params ...interface{}) (Validator, error) {
	min, err := intParam(params, "min")
	if err != nil {
		return nil, err
	}
	msg := core.Translate(msgMinLength, strconv.Itoa(min))
	return func(value interface{}) string {
		if IsEmpty(value) {
			return ""
		}
		if utf8.RuneCountInString(ToString(value)) >= min {
			return ""
		}
		return msg
	}, nil
}

func maxLength(params ...interface{}) (Validator, error) {
	max, err := intParam(params, "max")
	if err != nil {
		return nil, err
	}
	msg := core.Translate(msgMaxLength, strconv.Itoa(max))
	return func(value interface{}) string {
		if IsEmpty(value) {
			return ""
		}
		if utf8.RuneCountInString(ToString(value)) <= max {
			return ""
		}
		return msg
	}, nil
}

func pattern(params ...interface{}) (Validator, error) {
	if len(params) == 0 || len(params) > 2 {
		return nil, errors.Wrapf(ErrRuleParams, "pattern expects regex[, message], got %d params", len(params))
	}

	var re *regexp.Regexp
	switch p := params[0].(type) {
	case *regexp.Regexp:
		re = p
	case string:
		compiled, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrap(ErrRuleParams, err.Error())
		}
		re = compiled
	}
	if re == nil {
		return nil, errors.Wrapf(ErrRuleParams, "pattern regex: unsupported %T", params[0])
	}

	msg := core.Translate(msgPattern)
	if len(params) == 2 && params[1] != nil {
		text, ok := params[1].(string)
		if !ok {
			return nil, errors.Wrapf(ErrRuleParams, "pattern message: unsupported %T", params[1])
		}
		if text != "" {
			msg = text
		}
	}

	return func(value interface{}) string {
		if IsEmpty(value) {
			return ""
		}
		if re.MatchString(ToString(value)) {
			return ""
		}
		return msg
	}, nil
}

func custom(params ...interface{}) (Validator, error) {
	if len(params) != 1 {
		return nil, errors.Wrapf(ErrRuleParams, "custom expects 1 validator, got %d params", len(params))
	}
	switch fn := params[0].(type) {
	case Validator:
		if fn != nil {
			return fn, nil
		}
	case func(interface{}) string:
		if fn != nil {
			return fn, nil
		}
	}
	return nil, errors.Wrapf(ErrRuleParams, "custom validator: unsupported %T", params[0])
}

// intParam reads the first param as a non-negative integer. Decoded JSON gives
// float64, YAML gives int, env/flags give strings.
func intParam(params []interface{}, name string) (int, error) {
	if len(params) != 1 {
		return 0, errors.Wrapf(ErrRuleParams, "expected 1 param (%s), got %d", name, len(params))
	}

	var n int
	switch p := params[0].(type) {
	case int:
		n = p
	case int32:
		n = int(p)
	case int64:
		n = int(p)
	case uint:
		n = int(p)
	case float64:
		if p != math.Trunc(p) {
			return 0, errors.Wrapf(ErrRuleParams, "%s: %v is not a whole number", name, p)
		}
		n = int(p)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, errors.Wrapf(ErrRuleParams, "%s: %q is not a number", name, p)
		}
		n = i
	default:
		return 0, errors.Wrapf(ErrRuleParams, "%s: unsupported %T", name, params[0])
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrRuleParams, "%s: negative bound %d", name, n)
	}
	return n, nil
}
