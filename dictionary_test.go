package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodul/wordhunt/internal/solver"
)

func TestDictionarySourceLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.txt")
	os.WriteFile(path, []byte("cat\ncats\ncar\ncart\n"), 0o600)

	remoteHit := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		remoteHit = true
	}))
	defer ts.Close()

	dict, err := DictionarySource{Path: path, URL: ts.URL}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict.Len() != 4 || !dict.Contains("cart") {
		t.Fatalf("unexpected dictionary: %d words", dict.Len())
	}
	if remoteHit {
		t.Fatal("remote should not be fetched when the local file is usable")
	}
}

func TestDictionarySourceFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Apple\r\nbanana\nox\n"))
	}))
	defer ts.Close()

	// Missing file.
	dict, err := DictionarySource{Path: filepath.Join(t.TempDir(), "none.txt"), URL: ts.URL}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict.Len() != 2 || !dict.Contains("apple") {
		t.Fatalf("unexpected dictionary: %d words", dict.Len())
	}

	// File too short to be a word list.
	short := filepath.Join(t.TempDir(), "short.txt")
	os.WriteFile(short, []byte("cat\n"), 0o600)
	dict, err = DictionarySource{Path: short, URL: ts.URL}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict.Contains("cat") {
		t.Fatal("short local file should have been ignored")
	}
}

func TestDictionarySourceUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := DictionarySource{URL: ts.URL}.Load(context.Background())
	if !errors.Is(err, solver.ErrDictionaryUnavailable) {
		t.Fatalf("expected ErrDictionaryUnavailable, got %v", err)
	}

	_, err = DictionarySource{}.Load(context.Background())
	if !errors.Is(err, solver.ErrDictionaryUnavailable) {
		t.Fatalf("expected ErrDictionaryUnavailable without sources, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("a\nbb\n"))
	}))
	defer empty.Close()
	_, err = DictionarySource{URL: empty.URL}.Load(context.Background())
	if !errors.Is(err, solver.ErrDictionaryUnavailable) {
		t.Fatalf("expected ErrDictionaryUnavailable for unusable list, got %v", err)
	}
}
