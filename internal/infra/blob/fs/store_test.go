package fs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"srtingest/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "runs/r1/patients.csv", bytes.NewReader([]byte("PatientID\np1\n")), core.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"run_id": "r1"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "runs/r1/patients.csv" || info.Size != 13 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "runs/r1/patients.csv", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	h, err := store.Head(ctx, "runs/r1/patients.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if h.ContentType != "text/csv" || h.Metadata["run_id"] != "r1" {
		t.Fatalf("unexpected head %+v", h)
	}
	g, rc, err := store.Get(ctx, "runs/r1/patients.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "PatientID\np1\n" || g.ETag != h.ETag {
		t.Fatalf("unexpected get artifacts")
	}
	list, err := store.List(ctx, "runs/r1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "runs/r1/patients.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "runs/r1/patients.csv")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "runs/r1/patients.csv")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "../escape.csv", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected traversal error")
	}
	if _, err := store.Put(ctx, "/absolute.csv", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected absolute key error")
	}
	if _, err := store.Put(ctx, "  ", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestStore_ListOrderedByKey(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"runs/r1/b.csv", "runs/r1/a.csv", "runs/r2/a.csv"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"runs/r1/a.csv", "runs/r1/b.csv", "runs/r2/a.csv"}
	if len(list) != len(want) {
		t.Fatalf("list = %+v", list)
	}
	for i, info := range list {
		if info.Key != want[i] {
			t.Fatalf("list order = %+v", list)
		}
	}
	scoped, err := store.List(ctx, "runs/r2/")
	if err != nil || len(scoped) != 1 || scoped[0].Key != "runs/r2/a.csv" {
		t.Fatalf("scoped list = %+v (%v)", scoped, err)
	}
}

func TestStore_Driver(t *testing.T) {
	if got := newTempStore(t).Driver(); got != core.DriverFilesystem {
		t.Fatalf("driver = %v", got)
	}
}

func TestStore_HeadMissing(t *testing.T) {
	if _, err := newTempStore(t).Head(context.Background(), "absent.csv"); err == nil {
		t.Fatalf("expected miss error")
	}
}
