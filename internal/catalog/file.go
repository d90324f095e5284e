package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/solver-simco/internal/models"
)

// FileName is the catalog file inside a data directory
const FileName = "catalog.yaml"

// catalogFile is the YAML layout of a catalog
type catalogFile struct {
	TransportResource models.ResourceID      `yaml:"transport_resource"`
	Resources         []*models.ResourceNode `yaml:"resources"`
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// LoadDir reads catalog.yaml from a data directory
func LoadDir(dataDir string) (*Catalog, error) {
	return Load(filepath.Join(dataDir, FileName))
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c, err := New(raw.Resources, raw.TransportResource)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Save writes the catalog as YAML
func Save(path string, c *Catalog) error {
	raw := catalogFile{
		TransportResource: c.TransportID,
		Resources:         c.Nodes(),
	}
	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
