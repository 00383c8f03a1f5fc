package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"NewsSentinel/internal/model"
)

// seedFile is the on-disk shape of the static keyword-instrument mapping.
type seedFile struct {
	Seeds []struct {
		Keyword    string  `yaml:"keyword"`
		Instrument string  `yaml:"instrument"`
		Weight     float64 `yaml:"weight"`
	} `yaml:"seeds"`
}

// LoadSeeds reads the static keyword-instrument mapping file. A missing
// file is not an error: the system can run on learned associations alone.
func LoadSeeds(path string) ([]model.Association, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seeds := make([]model.Association, 0, len(sf.Seeds))
	for _, s := range sf.Seeds {
		if s.Keyword == "" || s.Instrument == "" {
			continue
		}
		w := s.Weight
		if w <= 0 || w > 1 {
			return nil, fmt.Errorf("seed %s->%s: weight %.2f out of range (0, 1]", s.Keyword, s.Instrument, w)
		}
		seeds = append(seeds, model.Association{
			Keyword:    s.Keyword,
			Instrument: s.Instrument,
			Weight:     w,
			Source:     model.SourceSeed,
		})
	}
	return seeds, nil
}
