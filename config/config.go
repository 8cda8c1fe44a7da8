// This file is part of BOSSWAVE.
//
// BOSSWAVE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BOSSWAVE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BOSSWAVE.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads the one piece of core-adjacent configuration that
// is genuinely data rather than code: which named roots a context should
// register beyond "global", and a default courier delivery mode. Parsed
// with gopkg.in/yaml.v3, the library the
// retrieval pack's other project reaches for once config stops being a
// handful of CLI flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeliveryMode names one of the four courier delivery modes from a
// config file, decoupled from internal/core's DeliveryMode so this
// package never has to import internal/.
type DeliveryMode string

const (
	DeliveryThreaded       DeliveryMode = "threaded"
	DeliveryExternalNotify DeliveryMode = "notify"
	DeliveryWaitable       DeliveryMode = "waitable"
	DeliveryPassive        DeliveryMode = "passive"
)

// Config is the top-level shape of a proptree YAML config file.
type Config struct {
	// Roots are additional named resolution roots to create alongside
	// "global" at startup (spec.md §4.1 "Addressing").
	Roots []string `yaml:"roots"`

	// DefaultCourier names a courier delivery mode; Load validates it
	// and fills in "threaded" when it is empty. The demo CLI does not
	// read it: its context always uses a threaded courier.
	DefaultCourier DeliveryMode `yaml:"default_courier"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{DefaultCourier: DeliveryThreaded}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DefaultCourier {
	case DeliveryThreaded, DeliveryExternalNotify, DeliveryWaitable, DeliveryPassive:
	case "":
		c.DefaultCourier = DeliveryThreaded
	default:
		return fmt.Errorf("config: unknown default_courier %q", c.DefaultCourier)
	}
	seen := make(map[string]bool, len(c.Roots))
	for _, r := range c.Roots {
		if r == "" || r == "global" {
			return fmt.Errorf("config: invalid root name %q", r)
		}
		if seen[r] {
			return fmt.Errorf("config: duplicate root %q", r)
		}
		seen[r] = true
	}
	return nil
}
