// Package config defines runtime defaults for the lineage labeler.
package config

// Config holds the settings shared by the serve and resolve commands.
type Config struct {
	// Listen is the webhook bind address.
	Listen string
	// MaxHops bounds a single lineage walk.
	MaxHops int
	// Policy is an optional CEL expression gating label write-backs.
	Policy string
	// OtelEndpoint overrides OTEL_EXPORTER_OTLP_ENDPOINT.
	OtelEndpoint string
	// JSONLogs switches slog to the JSON handler.
	JSONLogs bool
	// MockMode serves the built-in demo lineage graph instead of calling
	// the compute API.
	MockMode bool
}

// Defaults.
const (
	DefaultListen  = ":8080"
	DefaultMaxHops = 32
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Listen:  DefaultListen,
		MaxHops: DefaultMaxHops,
	}
}
