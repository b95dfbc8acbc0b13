package archive

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/praxislabs/vocalis/pkg/blob"
)

func TestExport(t *testing.T) {
	dst, err := blob.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	ctx := context.Background()

	rec := testRecord("sess-1")
	path, size, err := Export(ctx, dst, rec)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if path != "sess-1/transcript.json" {
		t.Errorf("path = %q", path)
	}

	data, err := blob.ReadAll(ctx, dst, path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(data) != size {
		t.Errorf("size = %d, artifact holds %d bytes", size, len(data))
	}
	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("exported record is not valid JSON: %v", err)
	}
	if got.ID != "sess-1" || len(got.Entries) != 2 {
		t.Errorf("exported record = %+v", got)
	}

	text, err := blob.ReadAll(ctx, dst, "sess-1/transcript.txt")
	if err != nil {
		t.Fatalf("ReadAll(txt) error = %v", err)
	}
	if !strings.Contains(string(text), "remote: Je comprends vos symptômes.") {
		t.Errorf("transcript.txt = %q", text)
	}
	if !strings.Contains(string(text), "scenario scn-42") {
		t.Errorf("transcript.txt missing scenario header: %q", text)
	}
}

func TestExportMissingID(t *testing.T) {
	dst, err := blob.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	if _, _, err := Export(context.Background(), dst, &Record{}); err == nil {
		t.Fatal("Export() without ID should fail")
	}
}
