// Package config holds the single validated configuration struct. All
// environment access happens here; nothing else reads env vars.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tecsup/agente/internal/repo"
)

// Config is parsed once at startup from AGENTE_-prefixed environment
// variables and validated before anything is wired.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	DataDir  string `env:"DATA_DIR" envDefault:"./data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	TablaUsuarios             string `env:"TABLA_USUARIOS" envDefault:"usuarios"`
	TablaInteracciones        string `env:"TABLA_INTERACCIONES" envDefault:"interacciones"`
	TablaRecetas              string `env:"TABLA_RECETAS" envDefault:"recetas"`
	TablaServicios            string `env:"TABLA_SERVICIOS" envDefault:"servicios"`
	TablaTareas               string `env:"TABLA_TAREAS" envDefault:"tareas"`
	TablaDatosAcademicos      string `env:"TABLA_DATOS_ACADEMICOS" envDefault:"datos_academicos"`
	TablaDatosEmocionales     string `env:"TABLA_DATOS_EMOCIONALES" envDefault:"datos_emocionales"`
	TablaDatosSocioeconomicos string `env:"TABLA_DATOS_SOCIOECONOMICOS" envDefault:"datos_socioeconomicos"`

	LimiteHistorial int `env:"LIMITE_HISTORIAL" envDefault:"30"`
	LimiteMemoria   int `env:"LIMITE_MEMORIA" envDefault:"10"`
	LimiteServicios int `env:"LIMITE_SERVICIOS" envDefault:"20"`
	LimiteTareas    int `env:"LIMITE_TAREAS" envDefault:"20"`

	RetentionKeep     int           `env:"RETENTION_KEEP" envDefault:"50"`
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL" envDefault:"1h"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "AGENTE_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("AGENTE_GEMINI_API_KEY is required")
	}
	if c.RetentionKeep <= 0 {
		return fmt.Errorf("AGENTE_RETENTION_KEEP must be positive, got %d", c.RetentionKeep)
	}
	if c.RetentionInterval <= 0 {
		return fmt.Errorf("AGENTE_RETENTION_INTERVAL must be positive, got %s", c.RetentionInterval)
	}
	for name, limit := range map[string]int{
		"AGENTE_LIMITE_HISTORIAL": c.LimiteHistorial,
		"AGENTE_LIMITE_MEMORIA":   c.LimiteMemoria,
		"AGENTE_LIMITE_SERVICIOS": c.LimiteServicios,
		"AGENTE_LIMITE_TAREAS":    c.LimiteTareas,
	} {
		if limit <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, limit)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Tables maps the configured table names into the repositories' binding.
func (c *Config) Tables() repo.Tables {
	return repo.Tables{
		Usuarios:             c.TablaUsuarios,
		Interacciones:        c.TablaInteracciones,
		Recetas:              c.TablaRecetas,
		Servicios:            c.TablaServicios,
		Tareas:               c.TablaTareas,
		DatosAcademicos:      c.TablaDatosAcademicos,
		DatosEmocionales:     c.TablaDatosEmocionales,
		DatosSocioeconomicos: c.TablaDatosSocioeconomicos,
	}
}

// SlogLevel parses LogLevel into a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid AGENTE_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
