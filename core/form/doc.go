// Package form implements a form state and validation engine.
//
// A Form owns the values of a logical form, the rules bound to its fields, the
// resulting error messages and two flags: dirty (a field was updated through
// the form since creation or the last Reset) and submitting (a Submit is in
// flight).
//
//	f := form.New(
//	    form.Values{"email": "", "password": ""},
//	    form.Rules{
//	        "email":    {form.Required, form.Email},
//	        "password": {form.Required, form.MinLength(6)},
//	    },
//	)
//	f.UpdateField("email", "student@masomo.cd")
//	if !f.ValidateSingleField("email") {
//	    msg, _ := f.FieldError("email")
//	    ...
//	}
//	out, err := f.Submit(ctx, func(ctx context.Context, vals form.Values) (interface{}, error) {
//	    return api.Login(ctx, vals)
//	})
//
// # Rules
//
// A field's rules run in order and the first failing rule's message wins.
// A rule is a named built-in, a parameterized built-in or an inline predicate;
// names are resolved through a Registry when validating. Built-ins:
//
//	required            This field is required
//	email               Please enter a valid email address
//	minLength(min)      Minimum {min} characters required
//	maxLength(max)      Maximum {max} characters allowed
//	phone               Please enter a valid phone number
//	url                 Please enter a valid URL
//	pattern(re, msg?)   Invalid format (or msg)
//	custom(fn)          whatever fn returns
//
// All built-ins but required pass an empty value (nil or ""), so
// {Required, Email} means "present and well-formed" and {Email} alone means
// "well-formed if present".
//
// References that cannot be resolved (unknown names, bad params) are skipped
// while validating. Registry.Check reports them, and is what config loaders
// should call.
//
// # Errors
//
// Failed rules are never returned as errors: they are messages in Errors.
// Only Submit returns ErrValidationFailed, and a handler's error is returned
// as is.
package form
