package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func TestDirRoundTrip(t *testing.T) {
	store, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	ctx := context.Background()

	if err := WriteAll(ctx, store, "exports/sess-1/transcript.json", []byte(`[]`)); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	ok, err := store.Exists(ctx, "exports/sess-1/transcript.json")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v", ok, err)
	}

	data, err := ReadAll(ctx, store, "exports/sess-1/transcript.json")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("data = %q", data)
	}

	if err := store.Delete(ctx, "exports/sess-1/transcript.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "exports/sess-1/transcript.json"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	if _, err := store.Read(ctx, "exports/sess-1/transcript.json"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read() after delete error = %v", err)
	}
}

func TestDirCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "exports")
	if _, err := NewDir(root); err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root not created: %v", err)
	}
}

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newMockS3() *mockS3 {
	return &mockS3{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey", msg: "no such key"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	if in.ContentType != nil {
		m.contentTypes[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &apiError{code: "NotFound", msg: "not found"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "exports", "vocalis")
	ctx := context.Background()

	if err := WriteAll(ctx, store, "sess-1/transcript.json", []byte(`[]`)); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if _, ok := mock.objects["vocalis/sess-1/transcript.json"]; !ok {
		t.Fatal("object not stored under prefixed key")
	}
	if ct := mock.contentTypes["vocalis/sess-1/transcript.json"]; ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	data, err := ReadAll(ctx, store, "sess-1/transcript.json")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("data = %q", data)
	}

	ok, err := store.Exists(ctx, "sess-1/transcript.json")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v", ok, err)
	}

	if err := store.Delete(ctx, "sess-1/transcript.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ok, err = store.Exists(ctx, "sess-1/transcript.json")
	if err != nil || ok {
		t.Fatalf("Exists() after delete = %v, %v", ok, err)
	}
}

func TestS3ReadMissing(t *testing.T) {
	store := NewS3(newMockS3(), "exports", "")
	if _, err := store.Read(context.Background(), "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read() error = %v, want os.ErrNotExist", err)
	}
}

func TestS3WriteUploadError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("upload refused")
	store := NewS3(mock, "exports", "")

	w, err := store.Write(context.Background(), "sess-1/audio.pcm")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w.Write([]byte("pcm"))
	if err := w.Close(); err == nil {
		t.Fatal("Close() should surface the upload error")
	}
}
