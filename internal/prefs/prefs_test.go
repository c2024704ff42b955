package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.SortDirection != "desc" {
		t.Fatalf("SortDirection = %q, want desc", p.SortDirection)
	}
	if p.Notifications {
		t.Fatal("Notifications should default to false")
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "leadglass")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	body := "theme = \"Slate\"\nsort_direction = \"asc\"\nnotifications_enabled = true\ntelegram_chat_id = \"-100200300\"\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", p.Theme)
	}
	if p.SortDirection != "asc" {
		t.Fatalf("SortDirection = %q, want asc", p.SortDirection)
	}
	if !p.Notifications {
		t.Fatal("Notifications = false, want true")
	}
	if p.TelegramChatID != "-100200300" {
		t.Fatalf("TelegramChatID = %q", p.TelegramChatID)
	}
}

func TestLoad_BogusSortFallsBack(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(path, []byte("sort_direction = \"sideways\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(path)
	if p.SortDirection != "desc" {
		t.Fatalf("SortDirection = %q, want desc", p.SortDirection)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "prefs.toml")

	want := Prefs{Theme: "Slate", SortDirection: "asc", Notifications: true, TelegramToken: "1234:abc", TelegramChatID: "42"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got := Load(path)
	if got != want {
		t.Fatalf("reload mismatch: got %#v want %#v", got, want)
	}
}
