package observability

import (
	"strings"

	"github.com/TechharaInc/Tanaka/internal/config"
)

// ServiceName identifies this process in logs, traces and metrics.
const ServiceName = "tanaka"

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

// Config holds observability settings derived from the application config.
type Config struct {
	ServiceName string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:          ServiceName,
		Version:              Version,
		LogLevel:             strings.ToLower(strings.TrimSpace(cfg.Log.Level)),
		LogFormat:            strings.ToLower(strings.TrimSpace(cfg.Log.Format)),
		OtelEnabled:          cfg.Otel.Enabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.Otel.Endpoint),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(cfg.Otel.Protocol)),
		OtelSamplingRatio:    cfg.Otel.SamplingRatio,
	}
}

// Debug reports whether verbose diagnostics are wanted.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}
