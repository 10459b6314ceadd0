package submission

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/form"
)

const confirmSuffix = "_confirm"

var (
	pwdMaxSim = .7
	pwdAttrs  = []string{"name", "username", "email"}

	pwdMismatchID   = "form.passwordMismatch"
	pwdMismatchText = "Passwords do not match"

	pwdAttrSimID   = "form.passwordTooSimilar"
	pwdAttrSimText = "Password is too similar to your personal information"
)

func init() {
	_ = core.AddTranslation(pwdMismatchID, pwdMismatchText)
	_ = core.AddTranslation(pwdAttrSimID, pwdAttrSimText)
}

// crossFieldErrors runs the checks that need more than one field.
// They only apply to forms that set a password, i.e. carry a password_confirm field.
func crossFieldErrors(vals form.Values) form.Errors {
	errs := make(form.Errors)
	confirm, ok := vals["password"+confirmSuffix]
	if !ok {
		return errs
	}

	pwd := form.ToString(vals["password"])
	if pwd != form.ToString(confirm) {
		errs["password"+confirmSuffix] = core.Translate(pwdMismatchID)
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	for _, attr := range pwdAttrs {
		value := core.CleanString(form.ToString(vals[attr]), true /* lower */)
		candidates := []string{value}
		if attr == "email" {
			if at := strings.IndexByte(value, '@'); at > 0 {
				candidates = append(candidates, value[:at])
			}
		}
		for _, c := range candidates {
			if getRatio(lpwd, c) >= pwdMaxSim {
				errs["password"] = core.Translate(pwdAttrSimID)
				return errs
			}
		}
	}
	return errs
}
