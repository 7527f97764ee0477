package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks the config for:
//   - A recognized secret source and sink type
//   - Per-source and per-sink required fields
//   - Parseable CIDR ranges in the origin allowlist
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.Webhook.SecretSource {
	case "env":
	case "file":
		if cfg.Webhook.SecretDir == "" {
			errs = append(errs, "webhook: secret_dir is required for the file secret source")
		}
	case "static":
		if cfg.Webhook.StaticSecret == "" {
			errs = append(errs, "webhook: static_secret is required for the static secret source")
		}
	default:
		errs = append(errs, fmt.Sprintf("webhook: unknown secret_source %q (env, file, static)", cfg.Webhook.SecretSource))
	}

	switch cfg.Sink.Type {
	case "jsonl":
		if cfg.Sink.Path == "" {
			errs = append(errs, "sink: path is required for the jsonl sink")
		}
	case "http":
		if cfg.Sink.Endpoint == "" {
			errs = append(errs, "sink: endpoint is required for the http sink")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("sink: unknown type %q (jsonl, http, memory)", cfg.Sink.Type))
	}

	for i, cidr := range cfg.Webhook.AllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Sprintf("webhook: allowed_cidrs[%d]: invalid CIDR %q", i, cidr))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
