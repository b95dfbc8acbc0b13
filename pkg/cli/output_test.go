package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type sampleResult struct {
	ID    string `json:"id" yaml:"id"`
	Count int    `json:"count" yaml:"count"`
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(sampleResult{ID: "sess-1", Count: 3}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}

	var got sampleResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.ID != "sess-1" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	err := Output(sampleResult{ID: "sess-1", Count: 3}, OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if !strings.Contains(buf.String(), "id: sess-1") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("raw output = %q", buf.String())
	}
}

func TestOutputUnsupportedFormat(t *testing.T) {
	if err := Output("x", OutputOptions{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Error("unsupported format should fail")
	}
}
