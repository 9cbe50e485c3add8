package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	shopflowerrors "github.com/alexisbeaulieu97/shopflow/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// LoadOptions selects the configuration sources layered over Default.
type LoadOptions struct {
	// Path is an optional YAML file.
	Path string
	// EnvFile is an optional dotenv file. Its values lose to Lookup.
	EnvFile string
	// Lookup reads the process environment; usually os.LookupEnv.
	Lookup LookupFunc
}

// Load builds the run configuration: defaults, then the YAML file, then the
// dotenv file, then the environment. The result is validated before it is
// returned.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.Path != "" {
		if err := decodeFile(opts.Path, cfg); err != nil {
			return nil, err
		}
	}

	lookups := []LookupFunc{opts.Lookup}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, shopflowerrors.NewParseError(opts.EnvFile, 0, err)
		}
		lookups = append(lookups, mapLookup(values))
	}

	if err := ApplyEnv(cfg, chainLookup(lookups...)); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decodeFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values; unknown keys are rejected.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return shopflowerrors.NewParseError(path, 0, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return shopflowerrors.NewParseError(path, extractLine(err), err)
	}

	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
