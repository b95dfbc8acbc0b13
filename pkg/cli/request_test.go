package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type sampleRequest struct {
	Instructions string `json:"instructions" yaml:"instructions"`
	Voice        string `json:"voice" yaml:"voice"`
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRequestYAML(t *testing.T) {
	path := writeTemp(t, "req.yaml", "instructions: be brief\nvoice: coral\n")

	var req sampleRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest() error = %v", err)
	}
	if req.Instructions != "be brief" || req.Voice != "coral" {
		t.Errorf("req = %+v", req)
	}
}

func TestLoadRequestJSON(t *testing.T) {
	path := writeTemp(t, "req.json", `{"instructions":"be brief","voice":"coral"}`)

	var req sampleRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest() error = %v", err)
	}
	if req.Voice != "coral" {
		t.Errorf("req = %+v", req)
	}
}

func TestParseRequestUnknownExtension(t *testing.T) {
	var req sampleRequest
	if err := ParseRequest([]byte("voice: coral"), "req.conf", &req); err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Voice != "coral" {
		t.Errorf("req = %+v", req)
	}

	if err := ParseRequest([]byte("{{not valid"), "req.conf", &req); err == nil {
		t.Error("garbage input should fail")
	}
}
