// Package config loads typed configuration from the environment.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: .env
// files feed the process environment, env struct tags drive the parse, and
// each config type is cached so repeated loads are cheap. Sections of the
// application declare their own config struct and call Load on it.
package config
