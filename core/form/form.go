package form

import (
	"sync"

	"github.com/trezcool/masomo-forms/core"
)

type (
	// Values maps field names to their current values.
	Values map[string]interface{}

	// Errors maps field names to an error message. A field is valid iff it has no entry.
	Errors map[string]string

	// State is a point-in-time copy of a Form's state, published to subscribers.
	State struct {
		Values       Values
		Errors       Errors
		IsDirty      bool
		IsSubmitting bool
	}

	Option func(*Form)

	// Form owns field values, per-field rules, error state, dirty/submitting flags
	// and the submit lifecycle of one logical form. It is safe for concurrent use.
	Form struct {
		mu           sync.Mutex
		values       Values
		initial      Values // never mutated after New
		rules        Rules
		errors       Errors
		isDirty      bool
		isSubmitting bool

		registry    *Registry
		logger      core.Logger
		subscribers map[int]func(State)
		nextSubID   int
	}
)

// WithRegistry resolves rule references through reg instead of DefaultRegistry.
func WithRegistry(reg *Registry) Option {
	return func(f *Form) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithLogger reports rule references that cannot be resolved.
func WithLogger(logger core.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a form with the given initial values and rules. Either may be nil.
func New(initial Values, rules Rules, opts ...Option) *Form {
	f := &Form{
		values:      initial.clone(),
		initial:     initial.clone(),
		rules:       rules.Clone(),
		errors:      make(Errors),
		registry:    DefaultRegistry,
		logger:      core.NopLogger{},
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (vals Values) clone() Values {
	cp := make(Values, len(vals))
	for k, v := range vals {
		cp[k] = v
	}
	return cp
}

func (errs Errors) clone() Errors {
	cp := make(Errors, len(errs))
	for k, v := range errs {
		cp[k] = v
	}
	return cp
}

// Accessors

// Value returns the current value of field (nil when unset).
func (f *Form) Value(field string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Values returns a copy of all current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.clone()
}

// InitialValues returns a copy of the values the form was created with.
func (f *Form) InitialValues() Values {
	return f.initial.clone()
}

// Errors returns a copy of the current errors.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.clone()
}

// FieldError returns the error message of field, if any.
func (f *Form) FieldError(field string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.errors[field]
	return msg, ok
}

func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isDirty
}

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isSubmitting
}

// IsValid reports whether the errors map is empty.
func (f *Form) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) == 0
}

// HasErrors reports whether any field carries a non-empty message.
func (f *Form) HasErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.errors {
		if msg != "" {
			return true
		}
	}
	return false
}

// State returns a copy of the whole form state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state()
}

// state must be called with f.mu held.
func (f *Form) state() State {
	return State{
		Values:       f.values.clone(),
		Errors:       f.errors.clone(),
		IsDirty:      f.isDirty,
		IsSubmitting: f.isSubmitting,
	}
}

// Validation

// ValidateField runs the rules of field against value and returns the first
// failing rule's message, or "". It does not touch the form state.
func (f *Form) ValidateField(field string, value interface{}) string {
	rules, ok := f.rules[field]
	if !ok {
		return ""
	}

	for _, rule := range rules {
		validate, err := f.registry.Resolve(rule)
		if err != nil {
			f.logger.Warn("form: skipping unresolvable rule", map[string]interface{}{
				"field": field,
				"rule":  rule.String(),
				"error": err.Error(),
			})
			continue
		}
		if msg := validate(value); msg != "" {
			return msg
		}
	}
	return ""
}

// Validate recomputes the errors of every field that has rules, replacing the
// previous errors entirely. It reports whether no field failed.
func (f *Form) Validate() bool {
	values := f.Values()

	newErrors := make(Errors)
	for field := range f.rules {
		if msg := f.ValidateField(field, values[field]); msg != "" {
			newErrors[field] = msg
		}
	}

	f.mu.Lock()
	f.errors = newErrors
	f.mu.Unlock()
	f.notify()

	return len(newErrors) == 0
}

// ValidateSingleField validates field alone, setting or clearing its error.
// Errors of other fields are left untouched.
func (f *Form) ValidateSingleField(field string) bool {
	msg := f.ValidateField(field, f.Value(field))

	f.mu.Lock()
	if msg != "" {
		f.errors[field] = msg
	} else {
		delete(f.errors, field)
	}
	f.mu.Unlock()
	f.notify()

	return msg == ""
}

// Mutations

// UpdateField sets the value of field and marks the form dirty. A pending error
// on field is cleared without re-validating the new value.
func (f *Form) UpdateField(field string, value interface{}) {
	f.mu.Lock()
	f.values[field] = value
	f.isDirty = true
	delete(f.errors, field)
	f.mu.Unlock()
	f.notify()
}

// SetValue writes a value the way a UI two-way binding does: the dirty flag and
// errors are left alone.
func (f *Form) SetValue(field string, value interface{}) {
	f.mu.Lock()
	f.values[field] = value
	f.mu.Unlock()
	f.notify()
}

// MarkDirty flags the form as changed without touching any value.
func (f *Form) MarkDirty() {
	f.mu.Lock()
	f.isDirty = true
	f.mu.Unlock()
	f.notify()
}

func (f *Form) ClearError(field string) {
	f.mu.Lock()
	delete(f.errors, field)
	f.mu.Unlock()
	f.notify()
}

func (f *Form) ClearErrors() {
	f.mu.Lock()
	f.errors = make(Errors)
	f.mu.Unlock()
	f.notify()
}

// SetError forces an error on field, whatever its rules say.
func (f *Form) SetError(field, message string) {
	f.mu.Lock()
	f.errors[field] = message
	f.mu.Unlock()
	f.notify()
}

// SetErrors merges errs into the current errors, overwriting existing fields.
func (f *Form) SetErrors(errs Errors) {
	f.mu.Lock()
	for field, msg := range errs {
		f.errors[field] = msg
	}
	f.mu.Unlock()
	f.notify()
}

// Reset puts every known field back to its initial value ("" for fields added
// after New), clears errors and the dirty flag.
func (f *Form) Reset() {
	f.mu.Lock()
	for field := range f.values {
		if v, ok := f.initial[field]; ok {
			f.values[field] = v
		} else {
			f.values[field] = ""
		}
	}
	f.errors = make(Errors)
	f.isDirty = false
	f.mu.Unlock()
	f.notify()
}

// Subscriptions

// Subscribe registers fn to receive the form state after every mutating call.
// Calling the returned func unsubscribes.
func (f *Form) Subscribe(fn func(State)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
		})
	}
}

// notify must be called without f.mu held.
func (f *Form) notify() {
	f.mu.Lock()
	if len(f.subscribers) == 0 {
		f.mu.Unlock()
		return
	}
	st := f.state()
	subs := make([]func(State), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
