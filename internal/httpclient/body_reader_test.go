package httpclient

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/torosent/variantbench/internal/config"
)

func TestNewBodySource(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		if _, err := NewBodySource(nil); err == nil {
			t.Error("NewBodySource(nil) error = nil, want error")
		}
	})

	t.Run("both payload and payload file", func(t *testing.T) {
		cfg := &config.Config{Payload: `{"a":1}`, PayloadFile: "file.json"}
		if _, err := NewBodySource(cfg); err == nil {
			t.Error("NewBodySource(both) error = nil, want error")
		}
	})

	t.Run("inline payload", func(t *testing.T) {
		content := `{"name":"John Doe"}`
		source, err := NewBodySource(&config.Config{Payload: content})
		if err != nil {
			t.Fatalf("NewBodySource(inline) error = %v", err)
		}
		if length, ok := source.ContentLength(); !ok || length != int64(len(content)) {
			t.Errorf("ContentLength() = %d, %v; want %d, true", length, ok, len(content))
		}
		assertReads(t, source, content)
		// Readers are independent per attempt.
		assertReads(t, source, content)
	})

	t.Run("payload file", func(t *testing.T) {
		content := `{"from":"file"}`
		path := filepath.Join(t.TempDir(), "payload.json")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		source, err := NewBodySource(&config.Config{PayloadFile: path})
		if err != nil {
			t.Fatalf("NewBodySource(file) error = %v", err)
		}
		if length, ok := source.ContentLength(); !ok || length != int64(len(content)) {
			t.Errorf("ContentLength() = %d, %v; want %d, true", length, ok, len(content))
		}
		assertReads(t, source, content)
	})

	t.Run("missing payload file", func(t *testing.T) {
		cfg := &config.Config{PayloadFile: filepath.Join(t.TempDir(), "missing.json")}
		if _, err := NewBodySource(cfg); err == nil {
			t.Error("NewBodySource(missing) error = nil, want error")
		}
	})

	t.Run("payload file is directory", func(t *testing.T) {
		if _, err := NewBodySource(&config.Config{PayloadFile: t.TempDir()}); err == nil {
			t.Error("NewBodySource(dir) error = nil, want error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		source, err := NewBodySource(&config.Config{})
		if err != nil {
			t.Fatalf("NewBodySource(empty) error = %v", err)
		}
		if length, ok := source.ContentLength(); !ok || length != 0 {
			t.Errorf("ContentLength() = %d, %v; want 0, true", length, ok)
		}
		assertReads(t, source, "")
	})
}

func assertReads(t *testing.T, source BodySource, want string) {
	t.Helper()
	rc, err := source.NewReader()
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != want {
		t.Errorf("ReadAll() = %q, want %q", string(got), want)
	}
}
