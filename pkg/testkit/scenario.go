// Package testkit drives REST API tests from JSON scenario files.
//
// A flow file holds an ordered array of scenarios that run against the same
// handler, so later steps observe what earlier steps created:
//
//	testdata/
//	  products_flow.json          ← [{"name": "create", ...}, {"name": "list", ...}]
//	  create_product_req.json     ← request body
//	  list_products_res.json      ← expected response body
//
// Example _test.go:
//
//	func TestProductsFlow(t *testing.T) {
//	    db := testkit.OpenDB(t, &models.Product{})
//	    testkit.RunFlow(t, buildHandler(db), "testdata/products_flow.json")
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes one request and the response it must produce.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline body, wins over RequestFileName
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int             `json:"expectedCode"`
	ResponseBody     json.RawMessage `json:"responseBody"`
	ResponseFileName string          `json:"responseFileName"`

	dir string
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.RequestURL == "" {
		return errors.New("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return errors.New("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = http.MethodGet
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

// LoadScenario reads a single scenario object from path.
func LoadScenario(path string) (*Scenario, error) {
	abs, data, err := read(path)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	s.dir = filepath.Dir(abs)
	return &s, nil
}

// LoadFlow reads an ordered array of scenarios from path.
func LoadFlow(path string) ([]*Scenario, error) {
	abs, data, err := read(path)
	if err != nil {
		return nil, err
	}

	var flow []*Scenario
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("testkit: parse flow %q: %w", abs, err)
	}
	if len(flow) == 0 {
		return nil, fmt.Errorf("testkit: flow %q is empty", abs)
	}
	for i, s := range flow {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: flow %q step %d: %w", abs, i, err)
		}
		s.dir = filepath.Dir(abs)
	}
	return flow, nil
}

// Body returns the request payload, or nil when the scenario has none.
func (s *Scenario) Body() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	return s.readRelative(s.RequestFileName)
}

// Expected returns the expected response payload, or nil when the
// scenario only checks the status code.
func (s *Scenario) Expected() ([]byte, error) {
	if len(s.ResponseBody) > 0 {
		return s.ResponseBody, nil
	}
	return s.readRelative(s.ResponseFileName)
}

func (s *Scenario) readRelative(name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.dir, name)
	}
	return os.ReadFile(name)
}

func read(path string) (string, []byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}
	return abs, data, nil
}
