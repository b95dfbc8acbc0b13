package voice

import (
	"sync"
	"time"

	"github.com/praxislabs/vocalis/pkg/jsontime"
)

// Speaker attributes a transcript entry.
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerRemote Speaker = "remote"
)

// Entry is one attributed, timestamped utterance in the conversation
// log. Entries are immutable once admitted; in particular the speaker
// attribution is never rewritten.
type Entry struct {
	Text    string         `json:"text"`
	Speaker Speaker        `json:"speaker"`
	At      jsontime.Milli `json:"at"`
}

// DefaultDedupWindow is the arrival-time window within which an
// identical utterance from the same speaker is treated as a duplicate.
// The same utterance can surface through two parallel channels (the
// protocol event and a separate textual confirmation), so the rule is
// deliberately coarse: text, speaker and time window, not semantics.
const DefaultDedupWindow = 2 * time.Second

// Transcript is the append-only conversation log of one session.
// Admitted timestamps are clamped monotonically non-decreasing even
// when the underlying events arrive with jitter.
type Transcript struct {
	mu      sync.Mutex
	window  time.Duration
	entries []Entry
}

// NewTranscript creates an empty Transcript with the default
// deduplication window.
func NewTranscript() *Transcript {
	return &Transcript{window: DefaultDedupWindow}
}

// Admit appends one utterance to the log, unless an existing entry has
// identical text, identical speaker and an arrival time within the
// deduplication window of at. Empty text is never admitted. Returns
// the stored entry and whether it was admitted.
func (t *Transcript) Admit(text string, speaker Speaker, at time.Time) (Entry, bool) {
	if text == "" {
		return Entry{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := at.Add(-t.window)
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if e.At.Time().Before(cutoff) {
			break
		}
		if e.Text == text && e.Speaker == speaker {
			return Entry{}, false
		}
	}

	// Clamp so insertion order stays monotonic in timestamp.
	if n := len(t.entries); n > 0 && at.Before(t.entries[n-1].At.Time()) {
		at = t.entries[n-1].At.Time()
	}

	entry := Entry{Text: text, Speaker: speaker, At: jsontime.Milli(at)}
	t.entries = append(t.entries, entry)
	return entry, true
}

// Entries returns a copy of the log in admission order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of admitted entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
