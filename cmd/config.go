/*
 * Copyright (C) 2025 Gaia-X dataspace community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/gaiax-dataspace/trustnode/contract"
	"github.com/gaiax-dataspace/trustnode/storage"
)

const defaultConfigFile = "trustnode.yaml"
const envPrefix = "TRUSTNODE_"
const configDelimiter = "."

// Config holds the node configuration.
type Config struct {
	// Domain is the public domain participants are published under, e.g. provider.example.com.
	Domain string `koanf:"domain"`
	// Datadir is the root directory for published documents and stored contract bodies.
	Datadir string `koanf:"datadir"`
	// Verbosity is the log level: trace, debug, info, warn or error.
	Verbosity string `koanf:"verbosity"`

	Database     storage.SQLConfig      `koanf:"database"`
	DataProducts []contract.DataProduct `koanf:"dataproducts"`
}

func defaultConfig() Config {
	return Config{
		Datadir:   "./data",
		Verbosity: "info",
	}
}

// loadConfig layers the configuration: defaults, then the config file (if present),
// then TRUSTNODE_ environment variables, then command line flags.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(configDelimiter)

	configFile := defaultConfigFile
	if flags != nil {
		if value, err := flags.GetString("configfile"); err == nil && value != "" {
			configFile = value
		}
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("unable to load config file %s: %w", configFile, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, configDelimiter, func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "_", configDelimiter)
	}), nil)
	if err != nil {
		return nil, err
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, configDelimiter, k), nil); err != nil {
			return nil, err
		}
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return &config, nil
}
