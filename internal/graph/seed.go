package graph

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"atlas-backend/internal/domain/atlas"
)

// SeedFile is the on-disk shape of a graph seed: topics, landmarks and routes
// loaded wholesale at startup.
type SeedFile struct {
	Topics    []atlas.Topic    `yaml:"topics"`
	Landmarks []atlas.Landmark `yaml:"landmarks"`
	Routes    []atlas.Route    `yaml:"routes"`
}

// LoadSeed reads a YAML seed file and upserts its contents into the store.
// Entries that fail validation abort the load so a bad seed is caught at
// startup rather than surfacing as missing nodes later.
func LoadSeed(path string, store *Store, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file %s: %w", path, err)
	}
	return ApplySeed(data, store, logger)
}

// ApplySeed parses seed YAML and upserts it into the store.
func ApplySeed(data []byte, store *Store, logger *zap.Logger) error {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed: %w", err)
	}

	for _, t := range seed.Topics {
		if _, err := store.UpsertTopic(t); err != nil {
			return fmt.Errorf("seed topic %q: %w", t.ID, err)
		}
	}
	for _, l := range seed.Landmarks {
		if _, err := store.UpsertLandmark(l); err != nil {
			return fmt.Errorf("seed landmark %q: %w", l.ID, err)
		}
	}
	for _, r := range seed.Routes {
		if _, err := store.UpsertRoute(r); err != nil {
			return fmt.Errorf("seed route %q: %w", r.ID, err)
		}
	}

	if logger != nil {
		logger.Info("graph seed applied",
			zap.Int("topics", len(seed.Topics)),
			zap.Int("landmarks", len(seed.Landmarks)),
			zap.Int("routes", len(seed.Routes)),
		)
	}
	return nil
}
