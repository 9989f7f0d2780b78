package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"PeriodReturns/internal/model"
)

// Output formats understood by the pipeline.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatXLSX     = "xlsx"
)

// Config holds all application configuration.
type Config struct {
	Symbols      []string `yaml:"symbols" envconfig:"SYMBOLS" validate:"required,min=1,dive,required"`
	HistoryStart string   `yaml:"history_start" envconfig:"HISTORY_START" validate:"omitempty,datetime=2006-01-02"`
	HistoryEnd   string   `yaml:"history_end" envconfig:"HISTORY_END" validate:"omitempty,datetime=2006-01-02"`
	DataSource   struct {
		BaseURL       string   `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
		APIKey        string   `yaml:"api_key" envconfig:"API_KEY"`
		RatePerSecond *float64 `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND" validate:"omitempty,gte=0"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Output struct {
		Dir     string   `yaml:"dir" envconfig:"DIR" validate:"required"`
		Formats []string `yaml:"formats" envconfig:"FORMATS" validate:"dive,oneof=csv markdown xlsx"`
	} `yaml:"output" envconfig:"OUTPUT"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
		RunLogPath string `yaml:"run_log_path" envconfig:"RUN_LOG_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Schedule struct {
		Cron string `yaml:"cron" envconfig:"CRON"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"ADDR" validate:"omitempty,hostname_port"`
	} `yaml:"server" envconfig:"SERVER"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides (e.g. SYMBOLS=GGAL,GGAL.BA, TELEGRAM_BOT_TOKEN, SQLITE_PATH)
// and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"GGAL", "GGAL.BA"}
	}
	if cfg.HistoryStart == "" {
		cfg.HistoryStart = "2010-01-01"
	}
	if cfg.DataSource.RatePerSecond == nil {
		perSecond := 2.0
		cfg.DataSource.RatePerSecond = &perSecond
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{FormatCSV, FormatMarkdown, FormatXLSX}
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/period_returns.db"
	}
	if cfg.Database.RunLogPath == "" {
		cfg.Database.RunLogPath = "data/runs.json"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 22 * * 5"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	start, err := c.Start()
	if err != nil {
		return err
	}
	end, err := c.End()
	if err != nil {
		return err
	}
	if !end.IsZero() && end.Before(start) {
		return fmt.Errorf("history_end %s is before history_start %s", end, start)
	}
	return nil
}

// TelegramEnabled reports whether results should be delivered to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Start is the first day of history to request.
func (c *Config) Start() (model.Date, error) {
	return model.ParseDate(c.HistoryStart)
}

// End is the last day of history to request. The zero Date means up to the
// day of each run.
func (c *Config) End() (model.Date, error) {
	if c.HistoryEnd == "" {
		return model.Date{}, nil
	}
	return model.ParseDate(c.HistoryEnd)
}

// RatePerSecond is the request pacing for the data source; 0 disables pacing.
func (c *Config) RatePerSecond() float64 {
	if c.DataSource.RatePerSecond == nil {
		return 0
	}
	return *c.DataSource.RatePerSecond
}
