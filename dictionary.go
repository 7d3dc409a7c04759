package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/bodul/wordhunt/internal/solver"
)

// minDictionaryText is the smallest local file considered usable; anything
// shorter falls through to the remote list.
const minDictionaryText = 10

const maxDictionarySize = 64 << 20 // 64 Mo

// DictionarySource locates the word list: a local file first, a URL second.
type DictionarySource struct {
	Path   string
	URL    string
	Client *http.Client
}

// Load reads the word list and builds the solver dictionary.
func (s DictionarySource) Load(ctx context.Context) (*solver.Dictionary, error) {
	text, origin, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	dict, err := solver.LoadDictionary(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("dictionary from %s: %w", origin, err)
	}
	slog.Info("Dictionary loaded", "origin", origin, "words", dict.Len())
	return dict, nil
}

func (s DictionarySource) fetch(ctx context.Context) ([]byte, string, error) {
	if s.Path != "" {
		text, err := os.ReadFile(s.Path)
		switch {
		case err == nil && len(bytes.TrimSpace(text)) >= minDictionaryText:
			return text, s.Path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			slog.Warn("Local dictionary unreadable", "path", s.Path, "err", err)
		default:
			slog.Info("Local dictionary missing or empty", "path", s.Path)
		}
	}

	if s.URL == "" {
		return nil, "", fmt.Errorf("%w: no usable local file and no fallback URL", solver.ErrDictionaryUnavailable)
	}
	text, err := s.download(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", solver.ErrDictionaryUnavailable, err)
	}
	return text, s.URL, nil
}

func (s DictionarySource) download(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dictionary request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dictionary: unexpected status %s", resp.Status)
	}
	text, err := io.ReadAll(io.LimitReader(resp.Body, maxDictionarySize))
	if err != nil {
		return nil, fmt.Errorf("read dictionary body: %w", err)
	}
	return text, nil
}
