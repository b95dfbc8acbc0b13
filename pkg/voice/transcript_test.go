package voice

import (
	"testing"
	"time"
)

func TestTranscriptDedup(t *testing.T) {
	base := time.Now()

	tr := NewTranscript()
	if _, ok := tr.Admit("Bonjour", SpeakerUser, base); !ok {
		t.Fatal("first admit rejected")
	}
	if _, ok := tr.Admit("Bonjour", SpeakerUser, base.Add(500*time.Millisecond)); ok {
		t.Error("duplicate within window admitted")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}

	if _, ok := tr.Admit("Bonjour", SpeakerUser, base.Add(5*time.Second)); !ok {
		t.Error("repeat outside window rejected")
	}
	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
}

func TestTranscriptSpeakerDistinct(t *testing.T) {
	base := time.Now()

	tr := NewTranscript()
	tr.Admit("Bonjour", SpeakerUser, base)
	if _, ok := tr.Admit("Bonjour", SpeakerRemote, base.Add(100*time.Millisecond)); !ok {
		t.Error("same text from the other speaker should be admitted")
	}
}

func TestTranscriptEmptyText(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.Admit("", SpeakerUser, time.Now()); ok {
		t.Error("empty text admitted")
	}
}

func TestTranscriptMonotonicTimestamps(t *testing.T) {
	base := time.Now()

	tr := NewTranscript()
	tr.Admit("first", SpeakerUser, base)
	entry, ok := tr.Admit("second", SpeakerRemote, base.Add(-time.Minute))
	if !ok {
		t.Fatal("jittered entry rejected")
	}
	if entry.At.Time().Before(base) {
		t.Errorf("timestamp %v not clamped to %v", entry.At.Time(), base)
	}

	entries := tr.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].At.Time().Before(entries[i-1].At.Time()) {
			t.Errorf("entry %d timestamp regresses", i)
		}
	}
}

func TestTranscriptEntriesCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Admit("hello", SpeakerUser, time.Now())

	entries := tr.Entries()
	entries[0].Text = "mutated"
	if tr.Entries()[0].Text != "hello" {
		t.Error("Entries() exposes internal storage")
	}
}
