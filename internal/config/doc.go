// Package config handles configuration loading, parsing, and validation
// from a YAML file and USERS_-prefixed environment variables. It provides
// type-safe access to the settings needed by the server, the store and the
// identity adapter.
package config
