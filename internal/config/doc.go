// Package config holds ttscrape's settings and loads them from a YAML
// file, the environment (including .env files) and command line flags,
// in increasing order of precedence.
package config
