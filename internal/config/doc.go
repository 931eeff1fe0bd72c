// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for viper.
//
// Configuration is TOML, decoded over built-in defaults, with environment
// variable overrides and validation.
//
// # Configuration Precedence
//
// Values are taken from (highest first):
//   - Environment variables (VIPER_*)
//   - The first config file found: --config, ./viper.toml,
//     ~/.viper/viper.toml, /etc/viper/viper.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, path, err := config.Load(flagPath)
//	if err != nil {
//	    return err
//	}
//	store := cfg.Modules.StoreOutput
package config
