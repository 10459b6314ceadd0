package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/submission"
	inmemdb "github.com/trezcool/masomo-forms/storage/database/inmem"
)

// NewSubmissionService returns a service over the builtin forms, backed by a
// fresh in-memory database. Hashing uses the cheapest bcrypt cost.
func NewSubmissionService(t *testing.T, opts ...submission.Option) *submission.Service {
	t.Helper()
	repo := inmemdb.NewSubmissionRepository(inmemdb.Open())
	opts = append([]submission.Option{submission.WithHashCost(bcrypt.MinCost)}, opts...)
	return submission.NewService(catalog.Builtin(), repo, nil, opts...)
}

// CreateSubmission stores values through svc and fails the test on error.
func CreateSubmission(t *testing.T, svc *submission.Service, form string, values map[string]interface{}) submission.Submission {
	t.Helper()
	sub, err := svc.Submit(context.Background(), form, values)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

func NewRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func MarshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("MarshalObj(): %v", err)
	}
	return data
}

func JSONBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func CheckCodeAndData(t *testing.T, wantCode int, wantData []byte, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	ok, err := JSONBytesEqual(rec.Body.Bytes(), wantData)
	if err != nil {
		t.Errorf("JSONBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(wantData))
	}
}
