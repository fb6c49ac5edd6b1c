package config

// HostConfig is the root configuration for the host.
type HostConfig struct {
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
	TLS     TLSSection     `koanf:"tls"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address. Empty disables the endpoint.
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// TLSSection configures the host's cached TLS contexts.
type TLSSection struct {
	// SystemRoots seeds every context with the system certificate pool.
	SystemRoots bool `koanf:"system_roots"`
}
