package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/engine"
	"github.com/Veraticus/budget-mapper/internal/llm"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

// EnvPrefix is prepended to environment overrides, e.g. BUDGET_LLM_MODEL.
const EnvPrefix = "BUDGET"

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/budget/budget.db"

// Settings is the typed application configuration.
type Settings struct {
	Logging   LoggingSettings
	Database  DatabaseSettings
	Telemetry telemetry.Config
	LLM       LLMSettings
	Engine    EngineSettings
}

// LoggingSettings controls the global logger.
type LoggingSettings struct {
	Level  string
	Format string
}

// DatabaseSettings locates the SQLite file.
type DatabaseSettings struct {
	Path string
}

// LLMSettings configures the model backend.
type LLMSettings struct {
	BaseURL       string
	Model         string
	Temperature   float64
	SingleTimeout time.Duration
	BatchTimeout  time.Duration
	RateLimit     int
}

// EngineSettings configures bulk runs.
type EngineSettings struct {
	BatchSize     int
	HistoryWindow int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	tel := telemetry.DefaultConfig()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", common.LogFormatConsole)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("llm.base_url", llm.DefaultBaseURL)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.single_timeout", llm.DefaultSingleTimeout)
	v.SetDefault("llm.batch_timeout", llm.DefaultBatchTimeout)
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("engine.batch_size", engine.DefaultBatchSize)
	v.SetDefault("engine.history_window", llm.DefaultHistoryWindow)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", tel.Endpoint)
	v.SetDefault("telemetry.url_path", tel.URLPath)
	v.SetDefault("telemetry.service_name", tel.ServiceName)
	v.SetDefault("telemetry.insecure", tel.Insecure)
}

// Load reads Settings from v. Telemetry keys fall back to the
// LANGFUSE_PUBLIC_KEY, LANGFUSE_SECRET_KEY and LANGFUSE_HOST environment
// variables; a public key from the environment turns tracing on unless
// telemetry.enabled is set explicitly.
func Load(v *viper.Viper) (*Settings, error) {
	// IsSet reports true for any key with a default, so explicit settings
	// are captured before the defaults are registered.
	enabledSet := v.IsSet("telemetry.enabled")
	endpointSet := v.IsSet("telemetry.endpoint")
	SetDefaults(v)

	s := &Settings{
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database: DatabaseSettings{
			Path: ExpandPath(v.GetString("database.path")),
		},
		LLM: LLMSettings{
			BaseURL:       v.GetString("llm.base_url"),
			Model:         v.GetString("llm.model"),
			Temperature:   v.GetFloat64("llm.temperature"),
			SingleTimeout: v.GetDuration("llm.single_timeout"),
			BatchTimeout:  v.GetDuration("llm.batch_timeout"),
			RateLimit:     v.GetInt("llm.rate_limit"),
		},
		Engine: EngineSettings{
			BatchSize:     v.GetInt("engine.batch_size"),
			HistoryWindow: v.GetInt("engine.history_window"),
		},
		Telemetry: telemetry.Config{
			Enabled:     v.GetBool("telemetry.enabled"),
			Endpoint:    v.GetString("telemetry.endpoint"),
			URLPath:     v.GetString("telemetry.url_path"),
			PublicKey:   v.GetString("telemetry.public_key"),
			SecretKey:   v.GetString("telemetry.secret_key"),
			ServiceName: v.GetString("telemetry.service_name"),
			Insecure:    v.GetBool("telemetry.insecure"),
		},
	}

	if s.Telemetry.PublicKey == "" {
		s.Telemetry.PublicKey = os.Getenv("LANGFUSE_PUBLIC_KEY")
		if s.Telemetry.PublicKey != "" && !enabledSet {
			s.Telemetry.Enabled = true
		}
	}
	if s.Telemetry.SecretKey == "" {
		s.Telemetry.SecretKey = os.Getenv("LANGFUSE_SECRET_KEY")
	}
	if host := os.Getenv("LANGFUSE_HOST"); host != "" && !endpointSet {
		s.Telemetry.Endpoint = host
		s.Telemetry.Insecure = !strings.HasPrefix(host, "https://")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges and enumerations.
func (s *Settings) Validate() error {
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	switch s.Logging.Format {
	case common.LogFormatConsole, common.LogFormatJSON:
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, s.Logging.Format)
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is required", common.ErrInvalidConfig)
	}
	if strings.TrimSpace(s.LLM.Model) == "" {
		return fmt.Errorf("%w: llm.model is required", common.ErrInvalidConfig)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be between 0 and 2", common.ErrInvalidConfig)
	}
	if s.LLM.SingleTimeout <= 0 || s.LLM.BatchTimeout <= 0 {
		return fmt.Errorf("%w: llm timeouts must be positive", common.ErrInvalidConfig)
	}
	if s.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit cannot be negative", common.ErrInvalidConfig)
	}
	if s.Engine.BatchSize < 1 {
		return fmt.Errorf("%w: engine.batch_size must be at least 1", common.ErrInvalidConfig)
	}
	if s.Engine.HistoryWindow < 0 {
		return fmt.Errorf("%w: engine.history_window cannot be negative", common.ErrInvalidConfig)
	}
	if err := s.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// SuggesterConfig converts the LLM and engine settings.
func (s *Settings) SuggesterConfig() llm.Config {
	return llm.Config{
		Model:         s.LLM.Model,
		Temperature:   s.LLM.Temperature,
		SingleTimeout: s.LLM.SingleTimeout,
		BatchTimeout:  s.LLM.BatchTimeout,
		HistoryWindow: s.Engine.HistoryWindow,
		RateLimit:     s.LLM.RateLimit,
	}
}

// EngineConfig converts the engine settings.
func (s *Settings) EngineConfig() engine.Config {
	return engine.Config{BatchSize: s.Engine.BatchSize}
}

// EnvKeyReplacer maps nested keys to environment names, so llm.base_url
// is read from BUDGET_LLM_BASE_URL.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
