// Package config loads vcinstall settings through Viper.
//
// Configuration is read from config.yaml in the current directory or the
// XDG config home, with VCINSTALL_* environment variables taking
// precedence. Every setting has a default, so the installer runs without
// any config file present.
package config
