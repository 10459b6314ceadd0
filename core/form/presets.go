package form

// CommonValidations holds rule lists shared by most forms.
var CommonValidations = map[string][]Rule{
	"email":    {Required, Email},
	"password": {Required, MinLength(6)},
	"phone":    {Phone},
	"name":     {Required, MinLength(2)},
	"username": {Required, MinLength(2)},
}

// Common returns a copy of the common rule list stored under name.
func Common(name string) []Rule {
	return append([]Rule(nil), CommonValidations[name]...)
}
