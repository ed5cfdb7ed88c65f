// Package tkconfig loads the optional tinker.toml configuration file that
// both CLIs accept (§10). It is grounded on the teacher's config package:
// same DefaultConfig/LoadFrom shape, using the same TOML library, but
// trimmed to the handful of settings this spec's ambient stack actually
// calls for.
package tkconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds Tinker's ambient tuning knobs. None of these change the
// assembler's or VM's documented §7/§8 semantics; they are diagnostic
// aids only.
type Config struct {
	Execution struct {
		// MaxCycles bounds VM.Run's instruction budget before it returns
		// a Fault as a runaway-loop guard. 0 means unlimited.
		MaxCycles uint64 `toml:"max_cycles"`
	} `toml:"execution"`

	Trace struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"trace"`

	Display struct {
		// NumberFormat is "hex" or "dec", used by -symbols / trace output.
		NumberFormat string `toml:"number_format"`
	} `toml:"display"`
}

// DefaultConfig returns the configuration used when no tinker.toml is
// found, matching the teacher's LoadFrom fallback behavior.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 0
	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"
	cfg.Display.NumberFormat = "hex"
	return cfg
}

// LoadFrom loads configuration from path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
