package config

import (
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Books
		Database
		Markdown
		Extract
		Sync
		Logging
	}

	Books struct {
		Path             string // Root directory holding the .sdr folders
		MetadataFileName string // Exact base name of the metadata sidecar
	}
	Database struct {
		Path string
	}
	Markdown struct {
		OutputDir string // Empty disables the markdown export
	}
	Extract struct {
		Workers int // Files parsed concurrently
	}
	Sync struct {
		Schedule string // Cron format: "0 7 * * *" = daily at 07:00
	}
	Logging struct {
		Level slog.Level
	}
)

// NewViper returns a viper instance with defaults and environment binding.
// Callers may bind command-line flags on top of it before calling Load.
func NewViper() *viper.Viper {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("books_path", DefaultBooksPath)
	v.SetDefault("metadata_filename", DefaultMetadataFileName)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("markdown_output_dir", "")
	v.SetDefault("extract_workers", DefaultExtractWorkers)
	v.SetDefault("sync_schedule", DefaultSyncSchedule)
	v.SetDefault("log_level", "info")
	return v
}

// Load builds a Config from the given viper instance.
func Load(v *viper.Viper) *Config {
	workers := v.GetInt("EXTRACT_WORKERS")
	if workers < 1 {
		workers = 1
	}

	return &Config{
		Books: Books{
			Path:             v.GetString("BOOKS_PATH"),
			MetadataFileName: v.GetString("METADATA_FILENAME"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Markdown: Markdown{
			OutputDir: v.GetString("MARKDOWN_OUTPUT_DIR"),
		},
		Extract: Extract{
			Workers: workers,
		},
		Sync: Sync{
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		Logging: Logging{
			Level: parseLevel(v.GetString("LOG_LEVEL")),
		},
	}
}

// NewConfig reads configuration from the environment only.
func NewConfig() *Config {
	return Load(NewViper())
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Books.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return err
	}
	return c.Sync.Validate()
}

// Validate validates the library configuration.
func (c *Books) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MetadataFileName, validation.Required, validation.By(isBaseName)),
	)
}

// Validate validates the database configuration.
func (c *Database) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// Validate validates the extraction configuration.
func (c *Extract) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
	)
}

// Validate validates the sync configuration. The cron syntax itself is
// checked by the scheduler.
func (c *Sync) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Schedule, validation.Required),
	)
}

func isBaseName(value interface{}) error {
	name, _ := value.(string)
	if strings.ContainsAny(name, `/\`) {
		return errors.New("must be a file name, not a path")
	}
	return nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
