// Package config holds sitesnap's configuration: defaults, the flat
// Config struct populated from CLI flags, validation, and the optional
// .sitesnap YAML file with per-domain overrides.
//
// Configuration is passed through the application by value rather than
// read from globals, so components stay testable in isolation.
package config
