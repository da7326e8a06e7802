package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsErrNotConfiguredWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := Load()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Config{Backend: " SQLite ", DatabaseURL: "~/notes.db", LogLevel: "Debug"}
	if err := Save(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	exists, err := Exists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.Backend != BackendSQLite {
		t.Fatalf("expected backend %q, got %q", BackendSQLite, loaded.Backend)
	}
	if loaded.LogLevel != "debug" {
		t.Fatalf("expected log level %q, got %q", "debug", loaded.LogLevel)
	}
	if loaded.DatabaseURL != "~/notes.db" {
		t.Fatalf("expected database url to be stored unexpanded, got %q", loaded.DatabaseURL)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat config path: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when postgres has no database url")
	}
	cfg.DatabaseURL = "postgres://localhost/zettel"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestResolveDatabaseURL(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))

	cfg := Default()
	got, err := cfg.ResolveDatabaseURL("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(home, "data", "zettelkasten", "database.db")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if _, err := os.Stat(filepath.Dir(want)); err != nil {
		t.Fatalf("expected data dir to be created: %v", err)
	}

	got, err = cfg.ResolveDatabaseURL("~/override.db")
	if err != nil {
		t.Fatalf("resolve override: %v", err)
	}
	if want := filepath.Join(home, "override.db"); got != want {
		t.Fatalf("expected override %q, got %q", want, got)
	}

	cfg.DatabaseURL = "/srv/zettel.db"
	got, err = cfg.ResolveDatabaseURL("")
	if err != nil {
		t.Fatalf("resolve configured: %v", err)
	}
	if got != "/srv/zettel.db" {
		t.Fatalf("expected configured url, got %q", got)
	}

	pg := Config{Backend: BackendPostgres}
	if _, err := pg.ResolveDatabaseURL(""); err == nil {
		t.Fatal("expected error for postgres without url")
	}
}

func TestSaveConfigDirCreationError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := os.WriteFile(filepath.Join(home, configDirName), []byte("blocking file"), 0o644); err != nil {
		t.Fatalf("write blocking file: %v", err)
	}
	if err := Save(Default()); err == nil {
		t.Fatal("expected error when config dir path is blocked by a file")
	}
}
