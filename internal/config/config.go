// Package config хранит настройки обмена в TOML-файле рядом с приложением.
// Файл играет роль профиля оператора: порт, скорости, задержки и параметры
// загрузчика переживают перезапуск.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"retrolink/pkg/slavelink"
)

// Config — настройки приложения в том виде, в каком они лежат в файле.
// Задержки заданы в миллисекундах: так их правит оператор.
type Config struct {
	Port         string `toml:"port"`
	TypingBaud   int    `toml:"typing_baud"`
	TransferBaud int    `toml:"transfer_baud"`

	CharDelayMs   int `toml:"char_delay_ms"`
	LineDelayMs   int `toml:"line_delay_ms"`
	SettleDelayMs int `toml:"settle_delay_ms"`
	ByteDelayMs   int `toml:"byte_delay_ms"`

	LoadAddress uint16 `toml:"load_address"`
	AutoRun     bool   `toml:"auto_run"`

	// ListingEncoding — метка кодировки листингов ("cp866", "windows-1252"...),
	// пустая строка означает UTF-8.
	ListingEncoding string `toml:"listing_encoding"`

	// OutputDir — каталог для принятых кассетных образов.
	OutputDir string `toml:"output_dir"`
}

// Default возвращает настройки по умолчанию для типовой машины.
func Default() Config {
	return Config{
		TypingBaud:    1200,
		TransferBaud:  8000,
		CharDelayMs:   90,
		LineDelayMs:   300,
		SettleDelayMs: 500,
		ByteDelayMs:   15,
		LoadAddress:   0x4000,
		AutoRun:       true,
		OutputDir:     ".",
	}
}

// Load читает настройки из path. Отсутствующий файл — не ошибка:
// возвращаются значения по умолчанию. Нулевые поля дополняются умолчаниями.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("ошибка чтения настроек (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ошибка разбора настроек (%s): %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save записывает настройки в path, создавая каталог при необходимости.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога настроек: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка записи настроек (%s): %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("ошибка сериализации настроек: %w", err)
	}
	return nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	if c.TypingBaud <= 0 {
		return fmt.Errorf("typing_baud должен быть положительным, получено %d", c.TypingBaud)
	}
	if c.TransferBaud <= 0 {
		return fmt.Errorf("transfer_baud должен быть положительным, получено %d", c.TransferBaud)
	}
	if c.CharDelayMs < 0 || c.LineDelayMs < 0 || c.SettleDelayMs < 0 || c.ByteDelayMs < 0 {
		return fmt.Errorf("задержки не могут быть отрицательными")
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.TypingBaud == 0 {
		c.TypingBaud = def.TypingBaud
	}
	if c.TransferBaud == 0 {
		c.TransferBaud = def.TransferBaud
	}
	if c.LoadAddress == 0 {
		c.LoadAddress = def.LoadAddress
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
}

// Settings переводит настройки в параметры движка.
func (c Config) Settings() slavelink.Settings {
	return slavelink.Settings{
		PortName:     c.Port,
		TypingBaud:   c.TypingBaud,
		TransferBaud: c.TransferBaud,
		CharDelay:    time.Duration(c.CharDelayMs) * time.Millisecond,
		LineDelay:    time.Duration(c.LineDelayMs) * time.Millisecond,
		SettleDelay:  time.Duration(c.SettleDelayMs) * time.Millisecond,
		ByteDelay:    time.Duration(c.ByteDelayMs) * time.Millisecond,
		LoadAddress:  c.LoadAddress,
		AutoRun:      c.AutoRun,
	}
}
