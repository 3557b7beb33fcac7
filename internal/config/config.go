package config

import (
	"github.com/Alia5/GLIDER/internal/cmd"
)

// Log holds the logging flags shared by all commands.
type Log struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"GLIDER_LOG_LEVEL"`
	File    string `help:"Write logs to this file in addition to the console" env:"GLIDER_LOG_FILE"`
	RawFile string `help:"Write raw hook events to this file (implied on stdout at trace level)" env:"GLIDER_LOG_RAW_FILE"`
}

// CLI is the root Kong command tree.
type CLI struct {
	Log    Log    `embed:"" prefix:"log."`
	Config string `help:"Path to a configuration file" env:"GLIDER_CONFIG"`

	Server   cmd.Server          `cmd:"" help:"Run the gesture engine and its control API"`
	ConfCmd  cmd.ConfigCommand   `cmd:"" name:"config" help:"Configuration file helpers"`
	Key      cmd.KeyCommand      `cmd:"" help:"Manage the API server password"`
	Gestures cmd.GesturesCommand `cmd:"" help:"Inspect or reload the gesture store of a running server"`
}
