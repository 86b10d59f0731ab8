// Package config holds environment helpers shared by the binaries. Malformed
// values are logged and replaced by the default.
package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	envcfg "dispatch/internal/pkg/config"
)

func warn[T any](r envcfg.Result[T]) T {
	if r.FallbackApplied {
		slog.Warn("environment variable ignored", slog.String("reason", r.Warning))
	}
	return r.Value
}

func GetEnvString(key, def string) string { return warn(envcfg.EnvString(key, def, nil)) }

func GetEnvInt(key string, def int) int { return warn(envcfg.EnvInt(key, def, nil)) }

// GetEnvBool accepts the strconv.ParseBool spellings.
func GetEnvBool(key string, def bool) bool {
	return warn(envcfg.Env(key, def, strconv.ParseBool, nil))
}

// GetEnvDuration accepts time.ParseDuration formats such as "30s" or "1h30m".
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return warn(envcfg.EnvDuration(key, def, nil))
}

// GetEnvStringList splits a comma-separated variable, dropping blanks.
//
//	TRUSTED_PROXIES="10.0.0.0/8, 172.16.0.0/12" -> ["10.0.0.0/8", "172.16.0.0/12"]
func GetEnvStringList(key string, def []string) []string {
	list := GetEnvString(key, "")
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
