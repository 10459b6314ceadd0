package submission

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/pagination"
)

type (
	Service struct {
		forms    catalog.Catalog
		repo     Repository
		log      core.Logger
		perPage  int
		hashCost int
	}

	Option func(*Service)
)

// WithPageSize sets the default page size of List.
func WithPageSize(n int) Option {
	return func(svc *Service) { svc.perPage = n }
}

// WithHashCost sets the bcrypt cost used for sensitive fields.
func WithHashCost(cost int) Option {
	return func(svc *Service) { svc.hashCost = cost }
}

func NewService(forms catalog.Catalog, repo Repository, logger core.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = core.NopLogger{}
	}
	svc := &Service{
		forms:    forms,
		repo:     repo,
		log:      logger,
		perPage:  pagination.DefaultPerPage,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) Forms() catalog.Catalog {
	return svc.forms
}

func (svc *Service) definition(name string) (catalog.Definition, error) {
	def, ok := svc.forms.Get(name)
	if !ok {
		return catalog.Definition{}, errors.Wrapf(ErrUnknownForm, "%q", name)
	}
	return def, nil
}

// load builds the form of def and feeds it the known fields of values.
// Fields the definition does not know about are ignored.
func (svc *Service) load(def catalog.Definition, values map[string]interface{}) *form.Form {
	f := def.NewForm(form.WithLogger(svc.log))
	for _, field := range def.Fields() {
		if v, ok := values[field]; ok {
			f.UpdateField(field, v)
		}
	}
	return f
}

// Validate runs every rule of the named form, then the cross-field checks on
// fields that passed their own rules.
func (svc *Service) Validate(name string, values map[string]interface{}) (form.Errors, error) {
	def, err := svc.definition(name)
	if err != nil {
		return nil, err
	}

	f := svc.load(def, values)
	f.Validate()
	errs := f.Errors()
	for field, msg := range crossFieldErrors(f.Values()) {
		if _, failed := errs[field]; !failed {
			errs[field] = msg
		}
	}
	return errs, nil
}

// ValidateField returns the error message of a single field ("" when valid).
func (svc *Service) ValidateField(name, field string, values map[string]interface{}) (string, error) {
	def, err := svc.definition(name)
	if err != nil {
		return "", err
	}

	f := svc.load(def, values)
	if f.ValidateSingleField(field) {
		return crossFieldErrors(f.Values())[field], nil
	}
	msg, _ := f.FieldError(field)
	return msg, nil
}

// Submit runs the named form's submit lifecycle on values and stores the accepted
// values. Failed rules or cross-field checks are returned as a *core.ValidationError
// wrapping form.ErrValidationFailed.
func (svc *Service) Submit(ctx context.Context, name string, values map[string]interface{}) (Submission, error) {
	def, err := svc.definition(name)
	if err != nil {
		return Submission{}, err
	}

	f := svc.load(def, values)
	out, err := f.Submit(ctx, func(ctx context.Context, vals form.Values) (interface{}, error) {
		if errs := crossFieldErrors(vals); len(errs) > 0 {
			f.SetErrors(errs)
			return nil, NewValidationError(form.ErrValidationFailed, errs)
		}

		stored, err := svc.prepare(def, vals)
		if err != nil {
			return nil, err
		}
		return svc.repo.Create(ctx, Submission{
			ID:        uuid.New().String(),
			Form:      def.Name,
			Values:    stored,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		if errors.Is(err, form.ErrValidationFailed) {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				return Submission{}, err
			}
			return Submission{}, NewValidationError(err, f.Errors())
		}
		return Submission{}, err
	}

	sub, ok := out.Result.(Submission)
	if !ok {
		return Submission{}, errors.Errorf("submitting %q: unexpected result %T", name, out.Result)
	}
	svc.log.Info("submission stored", map[string]interface{}{"form": sub.Form, "id": sub.ID})
	return sub, nil
}

// prepare turns accepted values into stored values: confirmation fields are
// dropped, normalizers applied and sensitive fields hashed.
func (svc *Service) prepare(def catalog.Definition, vals form.Values) (form.Values, error) {
	stored := make(form.Values, len(vals))
	for field, v := range vals {
		if strings.HasSuffix(field, confirmSuffix) {
			continue
		}
		if normalize, ok := def.Normalize[field]; ok {
			v = normalize(v)
		}
		if def.IsSensitive(field) && !form.IsEmpty(v) {
			hash, err := bcrypt.GenerateFromPassword([]byte(form.ToString(v)), svc.hashCost)
			if err != nil {
				return nil, errors.Wrapf(err, "hashing %s", field)
			}
			v = string(hash)
		}
		stored[field] = v
	}
	return stored, nil
}

// Get returns the submission with the given id. Ids that are not UUIDs are never found.
func (svc *Service) Get(ctx context.Context, id string) (Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Submission{}, ErrNotFound
	}
	return svc.repo.Get(ctx, id)
}

// List returns one page of a form's submissions. perPage <= 0 uses the service's
// page size; a page out of range yields the first page.
func (svc *Service) List(ctx context.Context, name string, page, perPage int) (pagination.Page, []Submission, error) {
	if _, err := svc.definition(name); err != nil {
		return pagination.Page{}, nil, err
	}
	subs, err := svc.repo.ListByForm(ctx, name)
	if err != nil {
		return pagination.Page{}, nil, errors.Wrap(err, "listing submissions")
	}

	if perPage <= 0 {
		perPage = svc.perPage
	}
	p := pagination.New(subs, perPage)
	p.GoTo(page)
	return p.Summary(), p.Items(), nil
}

// Public returns sub without the values of its form's sensitive fields.
func (svc *Service) Public(sub Submission) Submission {
	def, ok := svc.forms.Get(sub.Form)
	if !ok || len(def.Sensitive) == 0 {
		return sub
	}
	vals := make(form.Values, len(sub.Values))
	for field, v := range sub.Values {
		if !def.IsSensitive(field) {
			vals[field] = v
		}
	}
	sub.Values = vals
	return sub
}

// NewValidationError lists errs (sorted by field) in a *core.ValidationError wrapping err.
func NewValidationError(err error, errs form.Errors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fErrs := make([]core.FieldError, 0, len(fields))
	for _, field := range fields {
		fErrs = append(fErrs, core.FieldError{Field: field, Error: errs[field]})
	}
	return core.NewValidationError(err, fErrs...)
}
