// Package env reads raw process environment values, for the few knobs that
// live outside the SERVANA_-prefixed config tree (bootstrap logging, PORT
// injected by the platform).
package env

import "os"

// Get returns the named variable's value, or fallback when it is unset or
// empty.
func Get(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
