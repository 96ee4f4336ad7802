package filestore

import (
	"io"
	"strings"
	"testing"
)

func TestStoreSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	key := "form1/claims_history/123-doc.pdf"
	n, err := store.Save(key, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != int64(len("pdf bytes")) {
		t.Errorf("size = %d", n)
	}
	if !store.Exists(key) {
		t.Error("stored object not found")
	}

	r, err := store.Open(key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "pdf bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for _, key := range []string{"", "../outside", "a/../../b"} {
		if _, err := store.Save(key, strings.NewReader("x")); err != ErrInvalidObjectKey {
			t.Errorf("key %q: got %v, want ErrInvalidObjectKey", key, err)
		}
	}
}

func TestStoreMissingRoot(t *testing.T) {
	if _, err := NewStore("/does/not/exist"); err == nil {
		t.Error("expected error for missing filestore path")
	}
}
