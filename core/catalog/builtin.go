package catalog

import (
	"regexp"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/form"
)

// RuleGender accepts the backend gender codes (L, P) and their display texts.
const RuleGender = "gender"

var (
	genderText  = "Please select a valid gender"
	genderMsgID = "form.gender"
	genderCodes = map[string]string{
		"L":         "L",
		"P":         "P",
		"Laki-laki": "L",
		"Perempuan": "P",
	}

	nimRegex        = regexp.MustCompile(`^\d{8,12}$`)
	nipRegex        = regexp.MustCompile(`^\d{18}$`)
	courseCodeRegex = regexp.MustCompile(`^[A-Z]{2,4}\d{3}$`)
	creditsRegex    = regexp.MustCompile(`^[1-6]$`)
)

func init() {
	_ = core.AddTranslation(genderMsgID, genderText)
	_ = form.DefaultRegistry.Register(RuleGender, nil, func(params ...interface{}) (form.Validator, error) {
		if len(params) > 0 {
			return nil, form.ErrRuleParams
		}
		return genderValidator, nil
	})
}

func genderValidator(value interface{}) string {
	if form.IsEmpty(value) {
		return ""
	}
	if s, ok := value.(string); ok {
		if _, ok := genderCodes[s]; ok {
			return ""
		}
	}
	return core.Translate(genderMsgID)
}

// GenderCode maps a gender display text to its backend code. Unknown values are
// returned as is.
func GenderCode(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		if code, ok := genderCodes[s]; ok {
			return code
		}
	}
	return value
}

// Builtin returns the forms every deployment knows about.
func Builtin() Catalog {
	defs := []Definition{
		{
			Name:    "login",
			Title:   "Sign in",
			Initial: form.Values{"email": "", "password": ""},
			Rules: form.Rules{
				"email":    form.Common("email"),
				"password": {form.Required},
			},
			Sensitive: []string{"password"},
		},
		{
			Name:    "register",
			Title:   "Create an account",
			Initial: form.Values{"name": "", "email": "", "password": "", "password_confirm": ""},
			Rules: form.Rules{
				"name":             form.Common("name"),
				"email":            form.Common("email"),
				"password":         form.Common("password"),
				"password_confirm": {form.Required},
			},
			Sensitive: []string{"password", "password_confirm"},
		},
		{
			Name:    "student_profile",
			Title:   "Student profile",
			Initial: form.Values{"nim": "", "name": "", "email": "", "phone": "", "gender": "", "address": ""},
			Rules: form.Rules{
				"nim":     {form.Required, form.Pattern(nimRegex, "NIM must be 8 to 12 digits")},
				"name":    form.Common("name"),
				"email":   form.Common("email"),
				"phone":   form.Common("phone"),
				"gender":  {form.Required, form.Named(RuleGender)},
				"address": {form.MaxLength(255)},
			},
			Normalize: map[string]func(interface{}) interface{}{"gender": GenderCode},
		},
		{
			Name:    "lecturer_profile",
			Title:   "Lecturer profile",
			Initial: form.Values{"nip": "", "name": "", "email": "", "phone": "", "expertise": ""},
			Rules: form.Rules{
				"nip":       {form.Required, form.Pattern(nipRegex, "NIP must be 18 digits")},
				"name":      form.Common("name"),
				"email":     form.Common("email"),
				"phone":     form.Common("phone"),
				"expertise": {form.MaxLength(100)},
			},
		},
		{
			Name:    "course",
			Title:   "Course",
			Initial: form.Values{"code": "", "name": "", "credits": "", "description": "", "syllabus_url": ""},
			Rules: form.Rules{
				"code":         {form.Required, form.Pattern(courseCodeRegex, "Course code must look like IF101")},
				"name":         {form.Required, form.MinLength(3), form.MaxLength(100)},
				"credits":      {form.Required, form.Pattern(creditsRegex, "Credits must be between 1 and 6")},
				"description":  {form.MaxLength(500)},
				"syllabus_url": {form.URL},
			},
		},
	}

	c := make(Catalog, len(defs))
	for _, d := range defs {
		c[d.Name] = d
	}
	return c
}
