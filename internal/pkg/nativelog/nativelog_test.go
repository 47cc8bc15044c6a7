package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriterRollsDaily(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day }
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}
	day = day.Add(2 * time.Minute)
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatal(err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "legalai_2024-03-01.log"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "legalai_2024-03-02.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(first)) != "first" || strings.TrimSpace(string(second)) != "second" {
		t.Fatalf("got %q / %q", first, second)
	}
}

func TestResolveDirPrefersEnv(t *testing.T) {
	t.Setenv(EnvLogDir, "/var/log/legalai")
	if got := ResolveDir("logs"); got != "/var/log/legalai" {
		t.Fatalf("got %q", got)
	}
	t.Setenv(EnvLogDir, "")
	if got := ResolveDir("custom"); got != "custom" {
		t.Fatalf("got %q", got)
	}
}
