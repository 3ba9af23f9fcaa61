package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadMissingFile: отсутствующий файл — умолчания без ошибки.
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("получено %+v, ожидались умолчания", cfg)
	}
}

// TestLoadPartialFile: незаполненные поля дополняются умолчаниями.
func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrolink.toml")
	body := "port = \"COM3\"\nchar_delay_ms = 50\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "COM3" {
		t.Errorf("port=%q", cfg.Port)
	}
	if cfg.CharDelayMs != 50 {
		t.Errorf("char_delay_ms=%d", cfg.CharDelayMs)
	}
	if cfg.TypingBaud != Default().TypingBaud || cfg.TransferBaud != Default().TransferBaud {
		t.Errorf("скорости не дополнены умолчаниями: %+v", cfg)
	}
}

// TestLoadInvalid: отрицательная задержка отвергается.
func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrolink.toml")
	if err := os.WriteFile(path, []byte("byte_delay_ms = -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("ожидалась ошибка валидации")
	}
}

// TestSaveLoadRoundtrip: сохранённые настройки читаются без потерь.
func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "retrolink.toml")
	want := Default()
	want.Port = "/dev/ttyUSB0"
	want.LoadAddress = 0x1800
	want.AutoRun = false
	want.ListingEncoding = "windows-1252"

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("получено %+v,\nожидалось %+v", got, want)
	}
}

// TestSettingsConversion: миллисекунды переводятся в time.Duration.
func TestSettingsConversion(t *testing.T) {
	cfg := Default()
	cfg.Port = "COM1"
	cfg.CharDelayMs = 90

	s := cfg.Settings()
	if s.PortName != "COM1" {
		t.Errorf("PortName=%q", s.PortName)
	}
	if s.CharDelay != 90*time.Millisecond {
		t.Errorf("CharDelay=%v", s.CharDelay)
	}
	if s.LoadAddress != cfg.LoadAddress || s.AutoRun != cfg.AutoRun {
		t.Errorf("параметры загрузчика потеряны: %+v", s)
	}
}
