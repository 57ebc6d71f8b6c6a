// Package config loads connection settings from the environment (.env files
// beside the binary or in the working directory) and the extraction
// definition from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theappraisallane/jira-to-analytics/internal/jira"
	"github.com/theappraisallane/jira-to-analytics/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira    jira.Config
	LogDir  string
	Extract *ExtractConfig
}

// Load loads connection configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if exeDir != "" {
			logDir = filepath.Join(exeDir, "logs")
		} else {
			logDir = "logs"
		}
	}

	delaySecs, _ := strconv.Atoi(getEnv("JIRA_REQUEST_DELAY_SECONDS", "0"))
	pageSize, _ := strconv.Atoi(getEnv("JIRA_PAGE_SIZE", "25"))

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:      getEnv("JIRA_URL", ""),
			Username:     getEnv("JIRA_USERNAME", ""),
			Password:     getEnv("JIRA_PASSWORD", ""),
			Token:        getEnv("JIRA_TOKEN", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
			PageSize:     pageSize,
		},
		LogDir: logDir,
	}

	return cfg, nil
}

// ExtractConfig is the YAML extraction definition: which issues to pull,
// the workflow stages in display/simulation order, which of them are
// active, and the holiday calendar.
type ExtractConfig struct {
	Project        string             `yaml:"project"`
	JQL            string             `yaml:"jql"`
	Workflow       *workflow.Workflow `yaml:"workflow"`
	ActiveStatuses []string           `yaml:"activeStatuses"`
	Holidays       []string           `yaml:"holidays"`
}

// LoadExtract parses and validates an extraction definition file.
func LoadExtract(path string) (*ExtractConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extract config: %w", err)
	}

	var ec ExtractConfig
	if err := yaml.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("parsing extract config %s: %w", path, err)
	}

	if ec.Workflow == nil || ec.Workflow.Len() == 0 {
		return nil, fmt.Errorf("extract config %s: workflow must define at least one stage", path)
	}
	if ec.Project == "" && ec.JQL == "" {
		return nil, fmt.Errorf("extract config %s: either project or jql is required", path)
	}
	for _, h := range ec.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return nil, fmt.Errorf("extract config %s: malformed holiday date %q", path, h)
		}
	}

	active := workflow.NewActiveSet(ec.ActiveStatuses)
	if err := active.Validate(ec.Workflow); err != nil {
		return nil, fmt.Errorf("extract config %s: %w", path, err)
	}

	return &ec, nil
}

// ActiveSet returns the active statuses as a lookup set.
func (ec *ExtractConfig) ActiveSet() workflow.ActiveSet {
	return workflow.NewActiveSet(ec.ActiveStatuses)
}

// HolidayDates returns the parsed holiday dates. LoadExtract has already
// validated the format.
func (ec *ExtractConfig) HolidayDates() []time.Time {
	dates := make([]time.Time, 0, len(ec.Holidays))
	for _, h := range ec.Holidays {
		if d, err := time.Parse("2006-01-02", h); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

// Query returns the effective JQL: an explicit jql entry wins, otherwise a
// project query in creation order.
func (ec *ExtractConfig) Query() string {
	if ec.JQL != "" {
		return ec.JQL
	}
	return fmt.Sprintf("project = %s ORDER BY created ASC", ec.Project)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
