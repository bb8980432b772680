// Package config loads etfdesk configuration from a YAML file with
// environment variable overrides. Secrets are normally supplied through the
// environment (optionally via a .env file loaded by the binary).
package config
