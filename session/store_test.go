package session

import (
	"path/filepath"
	"testing"
)

func TestKeyIsStable(t *testing.T) {
	a := Key("/home/user/project")
	b := Key("/home/user/project")
	if a != b {
		t.Error("same workdir must hash to the same key")
	}
	if a == Key("/home/user/other") {
		t.Error("different workdirs must hash to different keys")
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex key, got %d chars", len(a))
	}
}

func TestLoadMissingKeyReturnsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "context.json"))
	entries, err := store.Load("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty sequence, got %d entries", len(entries))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "context.json"))
	key := Key("/some/dir")

	entries := []Entry{
		{Kind: KindSuccess, UserPrompt: "plan this", Response: "<checklist>1. do it</checklist>", Timestamp: Now()},
		{Kind: KindCompacted, UserPrompt: "[HISTORICAL CONTEXT SUMMARY]", Response: "earlier work summarized", Timestamp: Now(), CompactionLevel: 1},
	}
	if err := store.Save(key, entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[1].Kind != KindCompacted || got[1].CompactionLevel != 1 {
		t.Errorf("compacted entry did not round-trip: %+v", got[1])
	}
	if got[1].UserPrompt != "[HISTORICAL CONTEXT SUMMARY]" {
		t.Errorf("summary marker did not round-trip: %q", got[1].UserPrompt)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "context.json"))
	key := Key("/append/dir")

	for _, prompt := range []string{"first", "second", "third"} {
		if err := store.Append(key, Entry{Kind: KindSuccess, UserPrompt: prompt, Response: "ok"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Load(key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].UserPrompt != want {
			t.Errorf("entry %d = %q, want %q", i, got[i].UserPrompt, want)
		}
	}
}

func TestSessionsAreIsolatedByKey(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "context.json"))
	keyA, keyB := Key("/a"), Key("/b")

	if err := store.Append(keyA, Entry{Kind: KindSuccess, UserPrompt: "a", Response: "ra"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(keyB, Entry{Kind: KindSuccess, UserPrompt: "b", Response: "rb"}); err != nil {
		t.Fatal(err)
	}

	gotA, _ := store.Load(keyA)
	gotB, _ := store.Load(keyB)
	if len(gotA) != 1 || gotA[0].UserPrompt != "a" {
		t.Errorf("session A polluted: %+v", gotA)
	}
	if len(gotB) != 1 || gotB[0].UserPrompt != "b" {
		t.Errorf("session B polluted: %+v", gotB)
	}
}
