// Package config manages user-level settings stored at ~/.modkit/config.yaml.
// Values resolve in viper's usual order: explicit Set, MODKIT_* environment
// variables, the config file, then built-in defaults such as the companion
// library's repository and release asset name.
package config
