package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePathUsesXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	want := filepath.Join(tmp, "xlfsync", "auth.json")
	if got := FilePath(); got != want {
		t.Fatalf("FilePath() = %q, want %q", got, want)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("azure", "apikey123456", "westeurope"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	path := filepath.Join(tmp, "xlfsync", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	if got := GetAPIKey("azure"); got != "apikey123456" {
		t.Fatalf("GetAPIKey() = %q, want apikey123456", got)
	}
	if got := GetRegion("azure"); got != "westeurope" {
		t.Fatalf("GetRegion() = %q, want westeurope", got)
	}

	if err := Remove("azure"); err != nil {
		t.Fatalf("Remove(azure) error: %v", err)
	}
	if got := GetAPIKey("azure"); got != "" {
		t.Fatalf("GetAPIKey after remove = %q, want empty", got)
	}
	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}
}

func TestLoadInvalidFileReturnsEmptyStore(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir := filepath.Join(tmp, "xlfsync")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() = %#v, want empty store", got)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("azure", "stored-key", ""); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv(EnvAPIKey, "env-key")
	if got := ResolveAPIKey("azure", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveAPIKey("azure", ""); got != "env-key" {
		t.Fatalf("env should win over store, got %q", got)
	}

	t.Setenv(EnvAPIKey, "")
	if got := ResolveAPIKey("azure", ""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
