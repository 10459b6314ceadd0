package form

// FieldProps bundles what a UI binding needs for one field.
// It holds no state of its own: OnChange and OnBlur call back into the form.
type FieldProps struct {
	Name     string      `json:"name"`
	Value    interface{} `json:"value"`
	Error    string      `json:"error,omitempty"`
	HasError bool        `json:"has_error"`

	OnChange func(value interface{}) `json:"-"` // UpdateField
	OnBlur   func() bool              `json:"-"` // ValidateSingleField
}

// FieldProps returns the binding bundle for field.
func (f *Form) FieldProps(field string) FieldProps {
	f.mu.Lock()
	value := f.values[field]
	msg, hasErr := f.errors[field]
	f.mu.Unlock()

	return FieldProps{
		Name:     field,
		Value:    value,
		Error:    msg,
		HasError: hasErr,
		OnChange: func(value interface{}) { f.UpdateField(field, value) },
		OnBlur:   func() bool { return f.ValidateSingleField(field) },
	}
}
