package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo-forms/apps/api/echo"
	"github.com/trezcool/masomo-forms/core/submission"
	"github.com/trezcool/masomo-forms/tests"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newServer(t *testing.T) (echoapi.Server, *submission.Service) {
	svc := testutil.NewSubmissionService(t, submission.WithPageSize(2))
	app := echoapi.NewServer(&echoapi.Options{
		TestMode:       true,
		DisableReqLogs: true,
		SubmissionSvc:  svc,
	})
	return app, svc
}

func runHTTPTests(t *testing.T, app echoapi.Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := testutil.NewRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			testutil.CheckCodeAndData(t, tt.wantCode, tt.wantData, rec)
		})
	}
}

func registration() map[string]interface{} {
	return map[string]interface{}{
		"name":             "Amani Kabila",
		"email":            "amani@masomo.cd",
		"password":         "Xq7#zT9!wp",
		"password_confirm": "Xq7#zT9!wp",
	}
}

func TestHome(t *testing.T) {
	app, _ := newServer(t)

	req, rec := testutil.NewRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Masomo Forms API!", rec.Body.String())
}

func Test_formApi_forms(t *testing.T) {
	app, _ := newServer(t)
	notFound := []byte(`{"error": "not found"}`)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "list",
			method:   http.MethodGet,
			path:     "/v1/forms",
			wantCode: http.StatusOK,
			wantData: []byte(`[
				{"name": "course", "title": "Course", "fields": ["code", "credits", "description", "name", "syllabus_url"]},
				{"name": "lecturer_profile", "title": "Lecturer profile", "fields": ["email", "expertise", "name", "nip", "phone"]},
				{"name": "login", "title": "Sign in", "fields": ["email", "password"]},
				{"name": "register", "title": "Create an account", "fields": ["email", "name", "password", "password_confirm"]},
				{"name": "student_profile", "title": "Student profile", "fields": ["address", "email", "gender", "name", "nim", "phone"]}
			]`),
		},
		{
			name:     "trailing slash",
			method:   http.MethodGet,
			path:     "/v1/forms/login/",
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"name": "login", "title": "Sign in", "fields": ["email", "password"],
				"initial": {"email": "", "password": ""}, "sensitive": ["password"]
			}`),
		},
		{
			name:     "no sensitive fields",
			method:   http.MethodGet,
			path:     "/v1/forms/course",
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"name": "course", "title": "Course", "fields": ["code", "credits", "description", "name", "syllabus_url"],
				"initial": {"code": "", "credits": "", "description": "", "name": "", "syllabus_url": ""}, "sensitive": []
			}`),
		},
		{name: "unknown form", method: http.MethodGet, path: "/v1/forms/payment", wantCode: http.StatusNotFound, wantData: notFound},
	})
}

func Test_formApi_validate(t *testing.T) {
	app, _ := newServer(t)
	valid := []byte(`{"valid": true}`)

	mismatch := registration()
	mismatch["password_confirm"] = "nope"

	runHTTPTests(t, app, []httpTest{
		{
			name:     "empty body",
			method:   http.MethodPost,
			path:     "/v1/forms/login/validate",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "This field is required", "password": "This field is required"}`),
		},
		{
			name:     "invalid email",
			method:   http.MethodPost,
			path:     "/v1/forms/login/validate",
			body:     []byte(`{"email": "invalid-email", "password": "x"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "Please enter a valid email address"}`),
		},
		{
			name:     "valid",
			method:   http.MethodPost,
			path:     "/v1/forms/register/validate",
			body:     testutil.MarshalObj(t, registration()),
			wantCode: http.StatusOK,
			wantData: valid,
		},
		{
			name:     "cross-field",
			method:   http.MethodPost,
			path:     "/v1/forms/register/validate",
			body:     testutil.MarshalObj(t, mismatch),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password_confirm": "Passwords do not match"}`),
		},
		{
			name:     "not an object",
			method:   http.MethodPost,
			path:     "/v1/forms/login/validate",
			body:     []byte(`["email"]`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "request body must be a JSON object"}`),
		},
		{
			name:     "unknown form",
			method:   http.MethodPost,
			path:     "/v1/forms/payment/validate",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
		{
			name:     "field invalid",
			method:   http.MethodPost,
			path:     "/v1/forms/register/fields/password/validate",
			body:     []byte(`{"password": "123"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password": "Minimum 6 characters required"}`),
		},
		{
			name:     "field valid, others ignored",
			method:   http.MethodPost,
			path:     "/v1/forms/register/fields/email/validate",
			body:     []byte(`{"email": "amani@masomo.cd"}`),
			wantCode: http.StatusOK,
			wantData: valid,
		},
		{
			name:     "field of unknown form",
			method:   http.MethodPost,
			path:     "/v1/forms/payment/fields/amount/validate",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
	})
}

func Test_formApi_submit(t *testing.T) {
	app, svc := newServer(t)

	req, rec := testutil.NewRequest(http.MethodPost, "/v1/forms/register/submissions", testutil.MarshalObj(t, registration()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sub submission.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "register", sub.Form)
	assert.Equal(t, map[string]interface{}{"name": "Amani Kabila", "email": "amani@masomo.cd"}, map[string]interface{}(sub.Values))

	stored, err := svc.Get(req.Context(), sub.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Values, "password", "hashed password is stored")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/v1/forms/register/submissions",
			body:     []byte(`{"email": "amani@masomo.cd"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"name": "This field is required",
				"password": "This field is required",
				"password_confirm": "This field is required"
			}`),
		},
		{
			name:     "unknown form",
			method:   http.MethodPost,
			path:     "/v1/forms/payment/submissions",
			body:     []byte(`{}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
	})
}

func Test_formApi_submissions(t *testing.T) {
	app, svc := newServer(t)

	subs := make([]submission.Submission, 0, 3)
	for _, code := range []string{"IF101", "IF102", "IF103"} {
		subs = append(subs, testutil.CreateSubmission(t, svc, "course", map[string]interface{}{
			"code": code, "name": "Algorithms", "credits": "3",
		}))
	}
	reg := testutil.CreateSubmission(t, svc, "register", registration())

	page := func(number, perPage, total, pages int, hasNext, hasPrev bool, items ...submission.Submission) []byte {
		if items == nil {
			items = []submission.Submission{}
		}
		return testutil.MarshalObj(t, map[string]interface{}{
			"page": map[string]interface{}{
				"page": number, "per_page": perPage, "total": total, "total_pages": pages,
				"has_next": hasNext, "has_prev": hasPrev,
			},
			"items": items,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "first page",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions",
			wantCode: http.StatusOK,
			wantData: page(1, 2, 3, 2, true, false, subs[0], subs[1]),
		},
		{
			name:     "second page",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions?page=2",
			wantCode: http.StatusOK,
			wantData: page(2, 2, 3, 2, false, true, subs[2]),
		},
		{
			name:     "custom page size",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions?per_page=3",
			wantCode: http.StatusOK,
			wantData: page(1, 3, 3, 1, false, false, subs...),
		},
		{
			name:     "sensitive values are hidden",
			method:   http.MethodGet,
			path:     "/v1/forms/register/submissions",
			wantCode: http.StatusOK,
			wantData: page(1, 2, 1, 1, false, false, svc.Public(reg)),
		},
		{
			name:     "no submissions",
			method:   http.MethodGet,
			path:     "/v1/forms/login/submissions",
			wantCode: http.StatusOK,
			wantData: page(1, 2, 0, 0, false, false),
		},
		{
			name:     "invalid page",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions?page=0",
			wantCode: http.StatusOK,
			wantData: page(1, 2, 3, 2, true, false, subs[0], subs[1]),
		},
		{
			name:     "negative page",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions?page=-1",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"page": "page must be 1 or greater"}`),
		},
		{
			name:     "page size too big",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions?per_page=1000",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"per_page": "per_page must be 100 or less"}`),
		},
		{
			name:     "unknown form",
			method:   http.MethodGet,
			path:     "/v1/forms/payment/submissions",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions/" + subs[1].ID,
			wantCode: http.StatusOK,
			wantData: testutil.MarshalObj(t, subs[1]),
		},
		{
			name:     "retrieve hides sensitive values",
			method:   http.MethodGet,
			path:     "/v1/forms/register/submissions/" + reg.ID,
			wantCode: http.StatusOK,
			wantData: testutil.MarshalObj(t, svc.Public(reg)),
		},
		{
			name:     "retrieve through another form",
			method:   http.MethodGet,
			path:     "/v1/forms/login/submissions/" + subs[1].ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
		{
			name:     "retrieve unknown",
			method:   http.MethodGet,
			path:     "/v1/forms/course/submissions/nope",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "not found"}`),
		},
	})
}
