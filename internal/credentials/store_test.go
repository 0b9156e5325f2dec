package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"sdg-quest/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store := NewStore(path)

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if creds.Authenticated() {
		t.Fatalf("missing file should load as logged out, got %+v", creds)
	}

	want := domain.Credentials{Token: "tok", UserID: "u1", User: "Alice"}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want || !got.Authenticated() {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
	got, err = store.Load()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if got != (domain.Credentials{}) {
		t.Fatalf("expected empty credentials, got %+v", got)
	}
}

func TestStoreReadsFileKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte("token: abc\nuserId: \"42\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "abc" || got.UserID != "42" || got.User != "" {
		t.Fatalf("unexpected credentials %+v", got)
	}
}
