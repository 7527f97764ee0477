package config

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Server  ServerConf  `yaml:"server"`
	Webhook WebhookConf `yaml:"webhook"`
	Sink    SinkConf    `yaml:"sink"`
	Stream  StreamConf  `yaml:"stream"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// WebhookConf configures the trust gate for inbound deliveries.
type WebhookConf struct {
	// SecretName is the logical name resolved through the secret provider,
	// e.g. /github/metrics/secret-token.
	SecretName string `yaml:"secret_name"`
	// SecretSource selects the provider: env, file, or static.
	SecretSource string `yaml:"secret_source"`
	// SecretDir is the base directory for the file provider.
	SecretDir string `yaml:"secret_dir"`
	// StaticSecret is the literal secret for local development.
	StaticSecret string `yaml:"static_secret"`
	// AllowedCIDRs, when non-empty, enables origin filtering: requests from
	// addresses outside every listed range are rejected with 403. GitHub
	// publishes its hook ranges via the /meta API.
	AllowedCIDRs []string `yaml:"allowed_cidrs"`
	// TrustForwardedFor makes the filter read the first X-Forwarded-For hop
	// instead of the peer address. Enable only behind a trusted proxy.
	TrustForwardedFor bool `yaml:"trust_forwarded_for"`
}

// SinkConf selects and tunes the record sink.
type SinkConf struct {
	// Type is one of jsonl, http, memory.
	Type string `yaml:"type"`
	// Path is the output file for the jsonl sink.
	Path string `yaml:"path"`
	// Endpoint is the ingest URL for the http sink.
	Endpoint string `yaml:"endpoint"`
	// TimeoutMs bounds one http sink write.
	TimeoutMs int `yaml:"timeout_ms"`
}

// StreamConf controls the websocket live tail.
type StreamConf struct {
	Enabled bool `yaml:"enabled"`
}
