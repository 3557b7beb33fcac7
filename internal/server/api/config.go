package api

import "time"

// ServerConfig represents the control API configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:":3243" env:"GLIDER_API_ADDR"`
	ConnectionTimeout time.Duration `kong:"-"`
	Password          string        `kong:"-"`
}
