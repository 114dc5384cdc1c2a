package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Run executes every scenario in the file at path as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	scenarios, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s)
		})
	}
}

// RunDir runs every scenario file in dir. Files that fail to load are
// reported as errors and skipped.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	files, err := scenarioFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range files {
		scenarios, err := LoadScenarios(path)
		if err != nil {
			t.Errorf("testkit: %v", err)
			continue
		}
		for _, s := range scenarios {
			t.Run(s.Name, func(t *testing.T) {
				runScenario(t, handler, s)
			})
		}
	}
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	body, err := s.Body()
	if err != nil {
		t.Fatalf("[%s] request body: %v", s.Name, err)
	}
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, reqBody)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertHeaders(t, s, rec.Header())
	AssertContains(t, s, rec.Body.String())

	expected, err := s.ExpectedBody()
	if err != nil {
		t.Errorf("[%s] expected body: %v", s.Name, err)
		return
	}
	AssertJSONBody(t, s, expected, rec.Body.Bytes())
}
