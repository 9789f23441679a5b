// Package config provides minimal environment-based configuration.
package config

import "os"

// Get returns the value of an environment variable or a fallback when the
// variable is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
