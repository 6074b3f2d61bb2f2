package estimation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// SpeciesFile is the on-disk YAML document describing one estimation request:
// a target and the benchmark set to search over.
type SpeciesFile struct {
	Target     *SpeciesDefinition  `yaml:"target"`
	Benchmarks []SpeciesDefinition `yaml:"benchmarks"`
}

// LoadSpeciesFile reads and validates a species file.
func LoadSpeciesFile(path string) (*SpeciesFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest,
			fmt.Sprintf("cannot read species file %q", path))
	}
	return ParseSpeciesFile(raw)
}

// ParseSpeciesFile decodes a species document from YAML.
func ParseSpeciesFile(raw []byte) (*SpeciesFile, error) {
	var doc SpeciesFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSpeciesParseFailed,
			"species file is not valid YAML")
	}
	if doc.Target == nil {
		return nil, errors.New(errors.ErrCodeSpeciesParseFailed,
			"species file declares no target")
	}
	if len(doc.Benchmarks) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBenchmarkSet,
			"species file declares no benchmark species")
	}
	seen := make(map[string]bool, len(doc.Benchmarks)+1)
	seen[doc.Target.Label] = true
	for _, b := range doc.Benchmarks {
		if seen[b.Label] {
			return nil, errors.New(errors.ErrCodeConflict,
				"duplicate species label").WithDetail("label=" + b.Label)
		}
		seen[b.Label] = true
	}
	return &doc, nil
}
