package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/praxislabs/vocalis/pkg/blob"
)

// Export writes an archived session under "<id>/" in dst: the full
// record as transcript.json plus a readable transcript.txt with one
// attributed line per entry. Returns the JSON artifact path and the
// number of bytes it holds.
func Export(ctx context.Context, dst blob.Store, rec *Record) (string, int, error) {
	if rec.ID == "" {
		return "", 0, fmt.Errorf("archive: cannot export record without session ID")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("archive: encode record: %w", err)
	}
	jsonPath := rec.ID + "/transcript.json"
	if err := blob.WriteAll(ctx, dst, jsonPath, data); err != nil {
		return "", 0, fmt.Errorf("archive: export %s: %w", jsonPath, err)
	}

	textPath := rec.ID + "/transcript.txt"
	if err := blob.WriteAll(ctx, dst, textPath, []byte(renderTranscript(rec))); err != nil {
		return "", 0, fmt.Errorf("archive: export %s: %w", textPath, err)
	}
	return jsonPath, len(data), nil
}

// renderTranscript formats the entries as attributed, timestamped
// lines.
func renderTranscript(rec *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s (%s)\n", rec.ID, rec.Kind)
	if rec.ScenarioID != "" {
		fmt.Fprintf(&b, "scenario %s\n", rec.ScenarioID)
	}
	b.WriteByte('\n')
	for _, e := range rec.Entries {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.At.Time().Format("15:04:05"), e.Speaker, e.Text)
	}
	return b.String()
}
