package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordhunt.hcl")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
port            = "9000"
gemini_model    = "gemini-2.5-pro"
dictionary_path = "/srv/${env.WORDS_DIR}/words.txt"
grid_size       = 5
min_word_length = 4
workers         = 2
log_level       = "debug"
`)
	env := Env{"WORDS_DIR": "lists", "PORT": "7000", "GCP_PROJECT_ID": "proj"}

	cfg, err := LoadConfig(path, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultConfig()
	want.Port = "7000" // environment wins over the file
	want.GCPProjectID = "proj"
	want.GeminiModel = "gemini-2.5-pro"
	want.DictionaryPath = "/srv/lists/words.txt"
	want.GridSize = 5
	want.MinWordLength = 4
	want.Workers = 2
	want.LogLevel = slog.LevelDebug
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":        `port = `,
		"unknown attr":  `colour = "red"`,
		"wrong type":    `grid_size = "big"`,
		"grid too big":  `grid_size = 40`,
		"zero min":      `min_word_length = 0`,
		"neg workers":   `workers = -1`,
		"bad log level": `log_level = "loud"`,
		"no dictionary": "dictionary_path = \"\"\ndictionary_url = \"\"",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, body), Env{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"), Env{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvFromList(t *testing.T) {
	env := EnvFromList([]string{"A=1", "B=x=y", "BROKEN"})
	if diff := cmp.Diff(Env{"A": "1", "B": "x=y"}, env); diff != "" {
		t.Fatalf("env (-want +got):\n%s", diff)
	}
}
