// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is the configuration file used when none is given
// explicitly (and it exists).
const DefaultConfigFile = "go-bmc.yaml"

// DefaultBound is the maximum path length used when none is configured.
const DefaultBound = 10

// DefaultLoop is the loop specification used when none is configured.
const DefaultLoop = "all"

// InductionMethod proves invariants by simple induction.
const InductionMethod = "induction"

// TemporalInductionMethod proves or refutes invariants by temporal induction.
const TemporalInductionMethod = "een-sorensson"

// DefaultMethod is the method used to check invariants when none is configured.
const DefaultMethod = TemporalInductionMethod

// Prefix identifying environment variables which configure this tool.  For
// example, BMC_BOUND sets the bound.
const envPrefix = "BMC_"

// Config captures the settings shared by the commands.  Settings are drawn
// from (in increasing priority) defaults, the configuration file, the
// environment and, finally, flags given explicitly on the command line.
type Config struct {
	// Maximum length of paths considered
	Bound int `koanf:"bound"`
	// Loop specification (see bmc.ParseLoop)
	Loop string `koanf:"loop"`
	// Offset of encodings on the global timeline
	Offset int `koanf:"offset"`
	// Only consider paths whose length is exactly the bound
	OneProblem bool `koanf:"one_problem"`
	// Reuse a single solver across lengths
	Incremental bool `koanf:"incremental"`
	// Method used to check invariants (induction or een-sorensson)
	Method string `koanf:"method"`
	// Restrict encodings to fair paths
	Fairness bool `koanf:"fairness"`
	// Time allowed per property (zero means unlimited)
	Timeout time.Duration `koanf:"timeout"`
	// Colour mode (auto, always or never)
	Colour  string `koanf:"colour"`
	Verbose bool   `koanf:"verbose"`
}

// LoadConfig loads the configuration from a given file (or the default file,
// if it exists and no file is given), the environment and a given set of
// flags.  Only flags which were explicitly set override other sources.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	// Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"bound":       DefaultBound,
		"loop":        DefaultLoop,
		"offset":      0,
		"one_problem": false,
		"incremental": false,
		"method":      DefaultMethod,
		"fairness":    false,
		"timeout":     "0s",
		"colour":      "auto",
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	// Configuration file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	//
	if cfgFile != "" {
		log.Debugf("reading configuration from %s", cfgFile)
		//
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}
	// Environment, where BMC_ONE_PROBLEM becomes one_problem
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	// Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			//
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	//
	var cfg Config
	//
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	//
	return &cfg, cfg.Validate()
}

// Validate checks this configuration makes sense.
func (c *Config) Validate() error {
	loop, err := c.LoopSpec()
	//
	switch {
	case err != nil:
		return err
	case c.Offset < 0:
		return errors.New("offset cannot be negative")
	case c.Timeout < 0:
		return errors.New("timeout cannot be negative")
	case c.Colour != "auto" && c.Colour != "always" && c.Colour != "never":
		return fmt.Errorf("unknown colour mode \"%s\"", c.Colour)
	case c.Method != InductionMethod && c.Method != TemporalInductionMethod:
		return fmt.Errorf("unknown invariant method \"%s\"", c.Method)
	}
	//
	return bmc.CheckConsistency(c.Bound, loop)
}

// LoopSpec returns the loop specification of this configuration.
func (c *Config) LoopSpec() (bmc.Loop, error) {
	return bmc.ParseLoop(c.Loop)
}
