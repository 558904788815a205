package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase represents one request against a router and its expected outcome.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	ExpectedBody   map[string]any
	Validate       func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs each case as a subtest.
func RunHTTPTestCases(t *testing.T, h http.Handler, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, h, tc)
		})
	}
}

// RunHTTPTestCase serves a single case and checks status, body keys and the custom hook.
func RunHTTPTestCase(t *testing.T, h http.Handler, tc HTTPTestCase) {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	w := DoRequest(t, h, method, tc.Path, tc.Body, tc.Headers)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "Unexpected status code: %s", w.Body.String())
	}

	if tc.ExpectedBody != nil {
		actual := JSONBody[map[string]any](t, w)
		for key, expected := range tc.ExpectedBody {
			assert.Equal(t, expected, actual[key], "Unexpected value for key: %s", key)
		}
	}

	if tc.Validate != nil {
		tc.Validate(t, w)
	}
}

// DoJSON sends body encoded as JSON and returns the recorded response.
func DoJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return DoRequest(t, h, method, path, body, nil)
}

// DoRequest sends a request with optional JSON body and headers.
// A string or []byte body is sent as is.
func DoRequest(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		reader = ToJSONReader(t, b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// JSONBody decodes the response body into T.
func JSONBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "Failed to parse JSON response: %s", w.Body.String())
	return result
}

// AssertFieldError asserts a validation response carrying msg for field.
func AssertFieldError(t *testing.T, w *httptest.ResponseRecorder, field, msg string) {
	t.Helper()

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	errs := JSONBody[map[string][]string](t, w)
	assert.Contains(t, errs[field], msg)
}

// AssertDetail asserts a {"detail": [...]} body containing msg.
func AssertDetail(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	body := JSONBody[map[string][]string](t, w)
	assert.Contains(t, body["detail"], msg)
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
