// Copyright 2024 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"time"
)

// Config is the full configuration for clfd.
type Config struct {
	DatabaseFile string
	WebAddress   string
	ReadInterval time.Duration

	// Globs are the glob patterns matching the access log files to read.
	Globs []string
}

// JsonConfig is the external representation of Config as found in the
// configuration file.
type JsonConfig struct {
	DatabaseFile   string   `json:"databaseFile"`
	WebAddress     string   `json:"webAddress"`
	ReadIntervalMs int      `json:"readIntervalMs"`
	Globs          []string `json:"globs"`
}

// FromJSON converts a JsonConfig to a Config, applying defaults for anything
// left out of the file.
func FromJSON(jsonCfg JsonConfig) (*Config, error) {
	cfg := Config{
		DatabaseFile: "clfd.db",
		WebAddress:   ":8080",
		ReadInterval: 1 * time.Second,
		Globs:        jsonCfg.Globs,
	}
	if jsonCfg.DatabaseFile != "" {
		cfg.DatabaseFile = jsonCfg.DatabaseFile
	}
	if jsonCfg.WebAddress != "" {
		cfg.WebAddress = jsonCfg.WebAddress
	}
	if jsonCfg.ReadIntervalMs < 0 {
		return nil, fmt.Errorf("readIntervalMs must not be negative, got %v", jsonCfg.ReadIntervalMs)
	}
	if jsonCfg.ReadIntervalMs > 0 {
		cfg.ReadInterval = time.Duration(jsonCfg.ReadIntervalMs) * time.Millisecond
	}
	return &cfg, nil
}
