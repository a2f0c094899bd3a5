package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/gate"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
	"github.com/danielpatrickdp/field-triage/internal/store"
	"github.com/danielpatrickdp/field-triage/internal/triage"
)

// #region settings
// Settings is the runtime configuration. JSON files load as well, since JSON
// is valid YAML.
type Settings struct {
	Environment       string `yaml:"environment"`
	LocationLabel     string `yaml:"location_label"`
	DisableEscalation bool   `yaml:"disable_escalation"`

	Database DatabaseSettings `yaml:"database"`
	Codec    CodecSettings    `yaml:"codec"`
	Decider  ModelSettings    `yaml:"decider"`
	Clinical ModelSettings    `yaml:"clinical"`
	Budget   BudgetSettings   `yaml:"budget"`

	MaxIntakeTurns int `yaml:"max_intake_turns"`
	MaxQuestions   int `yaml:"max_questions"`

	Guardrail GuardrailSettings `yaml:"guardrail"`
}

// DatabaseSettings selects the store.
type DatabaseSettings struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CodecSettings holds shared transport settings.
type CodecSettings struct {
	GRPCAddr      string `yaml:"grpc_addr"`
	OpenAIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
}

// ModelSettings selects the backend for one model role.
type ModelSettings struct {
	Backend string `yaml:"backend"` // fallback | grpc | openai
	Model   string `yaml:"model"`
}

// BudgetSettings bounds clinical and summary model calls.
type BudgetSettings struct {
	MaxNewTokens   int     `yaml:"max_new_tokens"`
	MaxTimeSeconds float64 `yaml:"max_time_seconds"`
}

// GuardrailSettings replaces the built-in guardrail vocabulary when set.
type GuardrailSettings struct {
	HardTerms     []gate.HardTerm `yaml:"hard_terms"`
	EmergencySpO2 int             `yaml:"emergency_spo2"`
}

// DefaultSettings returns settings for an offline SQLite deployment.
func DefaultSettings() Settings {
	b := codec.DefaultBudget()
	return Settings{
		Environment:   string(clinical.EnvStandard),
		LocationLabel: "unspecified",
		Database:      DatabaseSettings{Driver: store.DriverSQLite, DSN: "field_triage.db"},
		Codec:         CodecSettings{GRPCAddr: "localhost:50051"},
		Decider:       ModelSettings{Backend: codec.BackendFallback},
		Clinical:      ModelSettings{Backend: codec.BackendFallback},
		Budget: BudgetSettings{
			MaxNewTokens:   b.MaxNewTokens,
			MaxTimeSeconds: b.MaxTime.Seconds(),
		},
		MaxIntakeTurns: intake.DefaultMaxTurns,
		MaxQuestions:   orchestrator.DefaultMaxQuestions,
	}
}

// #endregion settings

// #region load
// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error. A malformed file returns the defaults with
// env overrides applied, plus the parse error.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	var loadErr error
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			loadErr = fmt.Errorf("read config: %w", err)
		default:
			parsed := DefaultSettings()
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				loadErr = fmt.Errorf("parse config %s: %w", path, err)
			} else {
				s = parsed
			}
		}
	}
	applyEnv(&s)
	s.normalize()
	return s, loadErr
}

// Path returns the config path from TRIAGE_CONFIG, or "field_triage.yaml".
func Path() string {
	return envOr("TRIAGE_CONFIG", "field_triage.yaml")
}

func applyEnv(s *Settings) {
	s.Environment = envOr("TRIAGE_ENVIRONMENT", s.Environment)
	s.LocationLabel = envOr("TRIAGE_LOCATION", s.LocationLabel)
	s.Database.DSN = envOr("TRIAGE_DB", s.Database.DSN)
	s.Database.Driver = envOr("TRIAGE_DB_DRIVER", s.Database.Driver)
	s.DisableEscalation = envBool("TRIAGE_DISABLE_ESCALATION", s.DisableEscalation)
	s.Codec.GRPCAddr = envOr("CODEC_ADDR", s.Codec.GRPCAddr)
	s.Codec.OpenAIKey = envOr("OPENAI_API_KEY", s.Codec.OpenAIKey)
	s.Codec.OpenAIBaseURL = envOr("OPENAI_BASE_URL", s.Codec.OpenAIBaseURL)
	s.Decider.Backend = envOr("TRIAGE_DECIDER_BACKEND", s.Decider.Backend)
	s.Clinical.Backend = envOr("TRIAGE_CLINICAL_BACKEND", s.Clinical.Backend)
	s.Decider.Model = envOr("TRIAGE_DECIDER_MODEL", s.Decider.Model)
	s.Clinical.Model = envOr("TRIAGE_CLINICAL_MODEL", s.Clinical.Model)
	s.Budget.MaxNewTokens = envInt("TRIAGE_MAX_NEW_TOKENS", s.Budget.MaxNewTokens)
	s.Budget.MaxTimeSeconds = envFloat("TRIAGE_MAX_TIME_SECONDS", s.Budget.MaxTimeSeconds)
}

func (s *Settings) normalize() {
	s.Environment = string(clinical.NormalizeEnvironment(s.Environment))
	if strings.TrimSpace(s.LocationLabel) == "" {
		s.LocationLabel = "unspecified"
	}
	d := DefaultSettings()
	if s.Budget.MaxNewTokens <= 0 {
		s.Budget.MaxNewTokens = d.Budget.MaxNewTokens
	}
	if s.Budget.MaxTimeSeconds <= 0 {
		s.Budget.MaxTimeSeconds = d.Budget.MaxTimeSeconds
	}
	if s.MaxIntakeTurns <= 0 {
		s.MaxIntakeTurns = d.MaxIntakeTurns
	}
	if s.MaxQuestions <= 0 {
		s.MaxQuestions = d.MaxQuestions
	}
	if s.Database.Driver == "" {
		s.Database.Driver = d.Database.Driver
	}
}

// #endregion load

// #region derived
// Env returns the configured deployment environment.
func (s Settings) Env() clinical.Environment {
	return clinical.NormalizeEnvironment(s.Environment)
}

// CallBudget converts the budget settings.
func (s Settings) CallBudget() codec.Budget {
	return codec.Budget{
		MaxNewTokens: s.Budget.MaxNewTokens,
		MaxTime:      time.Duration(s.Budget.MaxTimeSeconds * float64(time.Second)),
	}
}

// RouterConfig returns the triage router tables with guardrail overrides.
func (s Settings) RouterConfig() triage.RouterConfig {
	cfg := triage.DefaultRouterConfig()
	if len(s.Guardrail.HardTerms) > 0 {
		cfg.Gate.HardTerms = append([]gate.HardTerm(nil), s.Guardrail.HardTerms...)
	}
	if s.Guardrail.EmergencySpO2 > 0 {
		cfg.Gate.EmergencySpO2 = s.Guardrail.EmergencySpO2
	}
	cfg.Budget = s.CallBudget()
	return cfg
}

// ArbiterConfig returns the escalation arbiter config.
func (s Settings) ArbiterConfig() escalation.Config {
	cfg := escalation.DefaultConfig()
	cfg.Disabled = s.DisableEscalation
	cfg.ClinicalBudget = s.CallBudget()
	cfg.DeciderBudget.MaxTime = cfg.ClinicalBudget.MaxTime
	return cfg
}

// OrchestratorConfig returns the conversation limits.
func (s Settings) OrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.MaxQuestions = s.MaxQuestions
	return cfg
}

// DeciderBackend returns the backend config for the decider role.
func (s Settings) DeciderBackend() codec.BackendConfig {
	return s.backend(s.Decider)
}

// ClinicalBackend returns the backend config for the clinical role.
func (s Settings) ClinicalBackend() codec.BackendConfig {
	return s.backend(s.Clinical)
}

func (s Settings) backend(m ModelSettings) codec.BackendConfig {
	return codec.BackendConfig{
		Kind:     m.Backend,
		GRPCAddr: s.Codec.GRPCAddr,
		OpenAI: codec.OpenAIConfig{
			APIKey:  s.Codec.OpenAIKey,
			BaseURL: s.Codec.OpenAIBaseURL,
			Model:   m.Model,
		},
	}
}

// ForceFallback switches both model roles to the offline backend.
func (s *Settings) ForceFallback() {
	s.Decider.Backend = codec.BackendFallback
	s.Clinical.Backend = codec.BackendFallback
}

// #endregion derived

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return v
}

// #endregion helpers
