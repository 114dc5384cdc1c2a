package testkit

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertStatusCode(t *testing.T, s *Scenario, got int) {
	t.Helper()
	assert.Equal(t, s.ExpectedCode, got, "[%s] HTTP status code mismatch", s.Name)
}

func AssertHeaders(t *testing.T, s *Scenario, got http.Header) {
	t.Helper()
	for k, v := range s.ResponseHeaders {
		assert.Equal(t, v, got.Get(k), "[%s] header %s", s.Name, k)
	}
}

func AssertContains(t *testing.T, s *Scenario, body string) {
	t.Helper()
	for _, want := range s.ResponseContains {
		assert.Contains(t, body, want, "[%s] response body", s.Name)
	}
}

// AssertJSONBody compares both bodies after decoding, so key order and
// whitespace never matter. An empty expected body is not asserted.
func AssertJSONBody(t *testing.T, s *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected body is not valid JSON", s.Name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", s.Name, actual) {
		return
	}
	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", s.Name)
}
