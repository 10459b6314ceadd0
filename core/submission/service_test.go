package submission_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/pagination"
	"github.com/trezcool/masomo-forms/core/submission"
	inmemdb "github.com/trezcool/masomo-forms/storage/database/inmem"
)

var errDBDown = errors.New("db down")

type failingRepo struct {
	submission.Repository
}

func (failingRepo) Create(context.Context, submission.Submission) (submission.Submission, error) {
	return submission.Submission{}, errDBDown
}

func newService(repo submission.Repository) *submission.Service {
	if repo == nil {
		repo = inmemdb.NewSubmissionRepository(inmemdb.Open())
	}
	return submission.NewService(catalog.Builtin(), repo, nil,
		submission.WithHashCost(bcrypt.MinCost),
		submission.WithPageSize(2),
	)
}

func validRegistration() map[string]interface{} {
	return map[string]interface{}{
		"name":             "Amani Kabila",
		"email":            "amani@masomo.cd",
		"password":         "Xq7#zT9!wp",
		"password_confirm": "Xq7#zT9!wp",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "want a validation error, got %v", err)
	assert.True(t, errors.Is(err, form.ErrValidationFailed))
	return vErr.FieldMap()
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	vals := validRegistration()
	vals["role"] = "admin" // unknown to the form
	sub, err := svc.Submit(ctx, "register", vals)
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "register", sub.Form)
	assert.False(t, sub.CreatedAt.IsZero())
	assert.Equal(t, "Amani Kabila", sub.Values["name"])
	assert.NotContains(t, sub.Values, "password_confirm")
	assert.NotContains(t, sub.Values, "role")

	hash, ok := sub.Values["password"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "Xq7#zT9!wp", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Xq7#zT9!wp")))

	stored, err := svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub, stored)

	public := svc.Public(sub)
	assert.NotContains(t, public.Values, "password")
	assert.Contains(t, sub.Values, "password", "Public works on a copy")
}

func TestService_Submit_numericPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	vals := validRegistration()
	vals["password"] = 83726154.0 // JSON number
	vals["password_confirm"] = 11111111.0
	_, err := svc.Submit(ctx, "register", vals)
	assert.Equal(t, map[string]string{"password_confirm": "Passwords do not match"}, fieldErrors(t, err))

	vals["password_confirm"] = 83726154.0
	sub, err := svc.Submit(ctx, "register", vals)
	require.NoError(t, err)

	hash, ok := sub.Values["password"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("83726154")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("")))
}

func TestService_Submit_failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		form   string
		values func() map[string]interface{}
		want   map[string]string
	}{
		{
			name:   "rules",
			form:   "register",
			values: func() map[string]interface{} { return map[string]interface{}{"email": "nope"} },
			want: map[string]string{
				"name":             "This field is required",
				"email":            "Please enter a valid email address",
				"password":         "This field is required",
				"password_confirm": "This field is required",
			},
		},
		{
			name: "password confirmation",
			form: "register",
			values: func() map[string]interface{} {
				vals := validRegistration()
				vals["password_confirm"] = "something else"
				return vals
			},
			want: map[string]string{"password_confirm": "Passwords do not match"},
		},
		{
			name: "password similar to email",
			form: "register",
			values: func() map[string]interface{} {
				vals := validRegistration()
				vals["password"] = "amani1"
				vals["password_confirm"] = "amani1"
				return vals
			},
			want: map[string]string{"password": "Password is too similar to your personal information"},
		},
		{
			name:   "gender",
			form:   "student_profile",
			values: func() map[string]interface{} { return map[string]interface{}{"gender": "X"} },
			want: map[string]string{
				"nim":    "This field is required",
				"name":   "This field is required",
				"email":  "This field is required",
				"gender": "Please select a valid gender",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(nil)
			_, err := svc.Submit(ctx, tt.form, tt.values())
			require.Error(t, err)
			assert.Equal(t, tt.want, fieldErrors(t, err))

			_, subs, err := svc.List(ctx, tt.form, 1, 0)
			require.NoError(t, err)
			assert.Empty(t, subs, "nothing stored")
		})
	}
}

func TestService_Submit_repositoryError(t *testing.T) {
	svc := newService(failingRepo{})

	_, err := svc.Submit(context.Background(), "register", validRegistration())
	assert.Equal(t, errDBDown, err)
}

func TestService_Get_notUUID(t *testing.T) {
	svc := newService(failingRepo{}) // no Get: the repository must not be reached

	_, err := svc.Get(context.Background(), "nope")
	assert.Equal(t, submission.ErrNotFound, err)
}

func TestService_Submit_unknownForm(t *testing.T) {
	svc := newService(nil)

	_, err := svc.Submit(context.Background(), "payment", nil)
	assert.True(t, errors.Is(err, submission.ErrUnknownForm))
	_, err = svc.Validate("payment", nil)
	assert.True(t, errors.Is(err, submission.ErrUnknownForm))
	_, err = svc.ValidateField("payment", "amount", nil)
	assert.True(t, errors.Is(err, submission.ErrUnknownForm))
	_, _, err = svc.List(context.Background(), "payment", 1, 0)
	assert.True(t, errors.Is(err, submission.ErrUnknownForm))
}

func TestService_Submit_normalizes(t *testing.T) {
	svc := newService(nil)

	sub, err := svc.Submit(context.Background(), "student_profile", map[string]interface{}{
		"nim":    "2021000123",
		"name":   "Amani",
		"email":  "amani@masomo.cd",
		"gender": "Perempuan",
	})
	require.NoError(t, err)
	assert.Equal(t, "P", sub.Values["gender"])
	assert.Equal(t, "", sub.Values["address"])
}

func TestService_Validate(t *testing.T) {
	svc := newService(nil)

	errs, err := svc.Validate("register", validRegistration())
	require.NoError(t, err)
	assert.Empty(t, errs)

	vals := validRegistration()
	vals["email"] = "bad"
	vals["password_confirm"] = "other"
	errs, err = svc.Validate("register", vals)
	require.NoError(t, err)
	assert.Equal(t, form.Errors{
		"email":            "Please enter a valid email address",
		"password_confirm": "Passwords do not match",
	}, errs)
}

func TestService_ValidateField(t *testing.T) {
	svc := newService(nil)

	tests := []struct {
		field  string
		values map[string]interface{}
		want   string
	}{
		{field: "email", values: map[string]interface{}{"email": "bad"}, want: "Please enter a valid email address"},
		{field: "email", values: map[string]interface{}{"email": "amani@masomo.cd"}, want: ""},
		{field: "password", values: map[string]interface{}{"password": "123"}, want: "Minimum 6 characters required"},
		{field: "password_confirm", values: map[string]interface{}{"password": "123456", "password_confirm": "1234567"}, want: "Passwords do not match"},
		{field: "nickname", values: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			msg, err := svc.ValidateField("register", tt.field, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	for i := 1; i <= 3; i++ {
		_, err := svc.Submit(ctx, "course", map[string]interface{}{
			"code":    fmt.Sprintf("IF10%d", i),
			"name":    "Algorithms",
			"credits": i,
		})
		require.NoError(t, err)
	}

	page, subs, err := svc.List(ctx, "course", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, pagination.Page{Number: 2, PerPage: 2, Total: 3, TotalPages: 2, HasPrev: true}, page)
	require.Len(t, subs, 1)
	assert.Equal(t, "IF103", subs[0].Values["code"])

	page, subs, err = svc.List(ctx, "course", 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number, "out of range pages are ignored")
	assert.Len(t, subs, 3)
}
