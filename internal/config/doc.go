// Package config loads the dashboard's YAML configuration.
//
// Values may reference environment variables as ${VAR}; LoadDotEnv fills the
// environment from a .env file first so API keys stay out of the YAML.
package config
