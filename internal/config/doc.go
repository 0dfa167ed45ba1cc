// Package config persists CLI defaults (serial port path, network id,
// verbosity) to a per-user YAML file so they do not have to be repeated on
// every invocation.
package config
