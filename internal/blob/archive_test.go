package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestArchiveFiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	dir := t.TempDir()
	a := writeTemp(t, dir, "patients.csv", "PatientID\np1\n")
	b := writeTemp(t, dir, "values.csv", "PatientID,FieldName,FieldValue\np1,f,1\n")

	infos, err := ArchiveFiles(ctx, store, "runs", "20260829T120000Z-abcd", a, b)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].Key != "runs/20260829T120000Z-abcd/patients.csv" {
		t.Fatalf("key = %q", infos[0].Key)
	}
	if infos[0].ContentType != "text/csv" || infos[0].Metadata["run_id"] != "20260829T120000Z-abcd" {
		t.Fatalf("info = %+v", infos[0])
	}
	_, rc, err := store.Get(ctx, infos[0].Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "PatientID\np1\n" {
		t.Fatalf("archived content = %q", data)
	}
}

func TestArchiveFilesMissingFile(t *testing.T) {
	store := NewMemory()
	if _, err := ArchiveFiles(context.Background(), store, "runs", "r1", filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestArchiveFilesValidation(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "x.csv", "A\n1\n")
	if _, err := ArchiveFiles(context.Background(), nil, "runs", "r1", p); err == nil {
		t.Fatalf("expected store required error")
	}
	if _, err := ArchiveFiles(context.Background(), NewMemory(), "runs", "", p); err == nil {
		t.Fatalf("expected run id required error")
	}
}

func TestArchiveFilesImmutable(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	dir := t.TempDir()
	p := writeTemp(t, dir, "x.csv", "A\n1\n")
	if _, err := ArchiveFiles(ctx, store, "runs", "r1", p); err != nil {
		t.Fatalf("archive: %v", err)
	}
	// Archiving the same run twice collides with the create-only store.
	if _, err := ArchiveFiles(ctx, store, "runs", "r1", p); err == nil {
		t.Fatalf("expected duplicate archive error")
	}
}

func TestOpenDriverSelection(t *testing.T) {
	ctx := context.Background()
	t.Setenv("SRTINGEST_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %v", store.Driver())
	}

	t.Setenv("SRTINGEST_BLOB_DRIVER", "fs")
	t.Setenv("SRTINGEST_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %v", store.Driver())
	}

	t.Setenv("SRTINGEST_BLOB_DRIVER", "bogus")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
