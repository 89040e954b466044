package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Run executes the scenario stored at path against handler.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Run(s.Name, func(t *testing.T) {
		Do(t, handler, s)
	})
}

// RunFlow executes every step in the flow at path, in order, as subtests.
// A failing step stops the flow since later steps depend on its effects.
func RunFlow(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	flow, err := LoadFlow(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, s := range flow {
		if !t.Run(s.Name, func(t *testing.T) { Do(t, handler, s) }) {
			return
		}
	}
}

// Do fires one scenario and asserts its status code and body. It returns
// the recorded response for further checks.
func Do(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	body, err := s.Body()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, reader)
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

	expected, err := s.Expected()
	if err != nil {
		t.Errorf("[%s] read expected response: %v", s.Name, err)
		return rec
	}
	AssertJSONBody(t, s, expected, rec.Body.Bytes())
	return rec
}
