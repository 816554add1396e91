// Package config loads the onthisday YAML configuration.
//
// Files may reference ${VAR} environment variables; a .env file in the
// working directory is loaded into the environment first when present.
package config
