package config

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default host configuration.
func Default() *HostConfig {
	return &HostConfig{
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Path: DefaultMetricsPath,
		},
		TLS: TLSSection{
			SystemRoots: true,
		},
	}
}
