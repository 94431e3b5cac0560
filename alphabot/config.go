package alphabot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/alphabot-dev/alphabot/alphabot/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log    LogConfig       `toml:"log"`
	Bot    BotConfig       `toml:"bot"`
	DB     database.Config `toml:"db"`
	Web    WebConfig       `toml:"web"`
	Backup BackupConfig    `toml:"backup"`
}

type BotConfig struct {
	Prefix   string `toml:"prefix"`
	Language string `toml:"language"`

	// Absolutes and Admins are the global permission lists; absolutes can
	// never be demoted through stored records.
	Absolutes []string `toml:"absolutes"`
	Admins    []string `toml:"admins"`

	// NotifyPermissionDenied switches the silent permission drop to an
	// explicit reply.
	NotifyPermissionDenied bool `toml:"notify_permission_denied"`

	AppStatePath string `toml:"appstate"`

	// ClientCommand and ClientArgs launch the external chat client the
	// bridge transport talks to.
	ClientCommand string   `toml:"client_command"`
	ClientArgs    []string `toml:"client_args"`
}

type LogConfig struct {
	// Level uses slog's numeric levels: -4 debug, 0 info, 4 warn, 8 error.
	Level slog.Level `toml:"level"`
}

type WebConfig struct {
	Addr string `toml:"addr"`

	// BotBinary is the bot executable the panel launches and supervises.
	BotBinary string   `toml:"bot_binary"`
	BotArgs   []string `toml:"bot_args"`
}

type BackupConfig struct {
	Enabled       bool   `toml:"enabled"`
	Key           string `toml:"key"`
	Secret        string `toml:"secret"`
	Region        string `toml:"region"`
	Bucket        string `toml:"bucket"`
	Endpoint      string `toml:"endpoint"`
	Prefix        string `toml:"prefix"`
	IntervalHours int    `toml:"interval_hours"`
}

func (c *Config) applyDefaults() {
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = "/"
	}
	if c.Bot.Language == "" {
		c.Bot.Language = "en"
	}
	if c.Bot.AppStatePath == "" {
		c.Bot.AppStatePath = "data/appstate.json"
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
}
