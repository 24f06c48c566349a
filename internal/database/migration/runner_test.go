package migration

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_SortsByVersionAndSkipsNoise(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V2__add_index.sql", "CREATE INDEX idx ON t(c);")
	writeFile(t, dir, "V1__init.sql", "CREATE TABLE t (c INT);")
	writeFile(t, dir, "V10__later.sql", "ALTER TABLE t ADD d INT;")
	writeFile(t, dir, "README.md", "not a migration")
	writeFile(t, dir, "V3_bad_name.sql", "SELECT 1;")

	migs, err := load(dir)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	for i, want := range []int64{1, 2, 10} {
		if migs[i].version != want {
			t.Fatalf("position %d: expected version %d, got %d", i, want, migs[i].version)
		}
	}
	if migs[0].name != "init" {
		t.Fatalf("expected name init, got %q", migs[0].name)
	}
	if migs[0].checksum == "" || migs[0].checksum == migs[1].checksum {
		t.Fatalf("expected distinct non-empty checksums")
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__first.sql", "SELECT 1;")
	writeFile(t, dir, "V1__second.sql", "SELECT 2;")

	if _, err := load(dir); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoad_EmptyFileRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__empty.sql", "   \n  ")

	if _, err := load(dir); err == nil {
		t.Fatalf("expected empty file error")
	}
}

func TestLoad_MissingDirIsNotAnError(t *testing.T) {
	migs, err := load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 0 {
		t.Fatalf("expected no migrations, got %d", len(migs))
	}
}
