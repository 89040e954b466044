package main

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed stubs/*.stub
var defaultStubs embed.FS

// StubData holds the variables passed to the .stub templates.
type StubData struct {
	Name       string
	Lower      string
	StructName string // e.g. CreateSkusTable
}

// renderStub prefers a project override in .inventory/stubs and falls back
// to the embedded stub.
func renderStub(stubName string, data StubData) (string, error) {
	userPath := filepath.Join(".inventory", "stubs", stubName+".stub")

	content, err := os.ReadFile(userPath)
	if err != nil {
		if content, err = defaultStubs.ReadFile("stubs/" + stubName + ".stub"); err != nil {
			return "", fmt.Errorf("stub not found: %s", stubName)
		}
	}

	t, err := template.New(stubName).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parse stub %s: %w", stubName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render stub %s: %w", stubName, err)
	}
	return buf.String(), nil
}
