package archive

import (
	"context"
	"testing"
	"time"

	"github.com/praxislabs/vocalis/pkg/jsontime"
	"github.com/praxislabs/vocalis/pkg/realtime"
	"github.com/praxislabs/vocalis/pkg/voice"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id string) *Record {
	started := jsontime.Now()
	return &Record{
		ID:         id,
		Kind:       realtime.KindSimulation,
		ScenarioID: "scn-42",
		StartedAt:  started,
		StoppedAt:  started.Add(time.Minute),
		Entries: []voice.Entry{
			{Text: "Bonjour", Speaker: voice.SpeakerUser, At: started},
			{Text: "Je comprends vos symptômes.", Speaker: voice.SpeakerRemote, At: started.Add(2 * time.Second)},
		},
	}
}

func TestSaveGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testRecord("sess-1")
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != want.ID || got.Kind != want.Kind || got.ScenarioID != want.ScenarioID {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(got.Entries))
	}
	if got.Entries[1].Text != "Je comprends vos symptômes." || got.Entries[1].Speaker != voice.SpeakerRemote {
		t.Errorf("entry = %+v", got.Entries[1])
	}
}

func TestGetNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSaveMissingID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(context.Background(), &Record{}); err == nil {
		t.Fatal("Save() without ID should fail")
	}
}

func TestSaveOverwrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := testRecord("sess-1")
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec.Entries = rec.Entries[:1]
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Entries) != 1 {
		t.Errorf("entries = %d after overwrite, want 1", len(got.Entries))
	}
}

func TestList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"sess-b", "sess-a", "sess-c"} {
		if err := store.Save(ctx, testRecord(id)); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	var ids []string
	for rec, err := range store.List(ctx) {
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		ids = append(ids, rec.ID)
	}

	want := []string{"sess-a", "sess-b", "sess-c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord("sess-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); err != ErrNotFound {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is fine.
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
}
