package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"taskpilot/internal/models"
	"taskpilot/internal/validation"
)

// Catalog is the immutable set of candidate models the engine scores.
// Loaded once at startup; never mutated afterwards.
type Catalog struct {
	models []models.AIModelMetadata
	byName map[string]*models.AIModelMetadata
}

// catalogFile is the on-disk JSON shape
type catalogFile struct {
	Models []models.AIModelMetadata `json:"models"`
}

// Load reads a model catalog from a JSON file, validating it against the
// schema first. An empty path returns the built-in default catalog.
func Load(path, schemaPath string) (*Catalog, error) {
	if path == "" {
		log.Printf("Model catalog path not configured, using built-in catalog (%d models)", len(defaultModels))
		return New(defaultModels)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.WrapAgentError(models.ErrModelLoadingFailed, "failed to read catalog file", err)
	}

	if schemaPath != "" {
		if err := validation.ValidateCatalog(data, schemaPath); err != nil {
			return nil, models.WrapAgentError(models.ErrModelLoadingFailed, "catalog schema validation failed", err)
		}
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, models.WrapAgentError(models.ErrModelLoadingFailed, "failed to parse catalog file", err)
	}

	log.Printf("Loaded model catalog from %s (%d models)", path, len(file.Models))
	return New(file.Models)
}

// New builds a catalog from a model list
func New(entries []models.AIModelMetadata) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, models.NewAgentError(models.ErrInvalidConfiguration, "model catalog is empty")
	}

	byName := make(map[string]*models.AIModelMetadata, len(entries))
	list := make([]models.AIModelMetadata, len(entries))
	copy(list, entries)

	for i := range list {
		m := &list[i]
		if m.Name == "" {
			return nil, models.NewAgentError(models.ErrInvalidConfiguration, "catalog model missing name")
		}
		if _, dup := byName[m.Name]; dup {
			return nil, models.NewAgentError(models.ErrInvalidConfiguration, fmt.Sprintf("duplicate catalog model %q", m.Name))
		}
		for category, score := range m.Suitability {
			if score < 0 || score > 1 {
				return nil, models.NewAgentError(models.ErrInvalidConfiguration,
					fmt.Sprintf("model %q suitability for %s out of range: %f", m.Name, category, score))
			}
		}
		if m.AverageAccuracy < 0 || m.AverageAccuracy > 1 {
			return nil, models.NewAgentError(models.ErrInvalidConfiguration,
				fmt.Sprintf("model %q average accuracy out of range: %f", m.Name, m.AverageAccuracy))
		}
		byName[m.Name] = m
	}

	return &Catalog{models: list, byName: byName}, nil
}

// Models returns all catalog entries
func (c *Catalog) Models() []models.AIModelMetadata {
	return c.models
}

// Get returns the model with the given name, or nil
func (c *Catalog) Get(name string) *models.AIModelMetadata {
	return c.byName[name]
}

// Baseline returns the lowest-memory model. It is the designated fallback
// when resource constraints eliminate every candidate.
func (c *Catalog) Baseline() *models.AIModelMetadata {
	sorted := make([]*models.AIModelMetadata, 0, len(c.models))
	for i := range c.models {
		sorted = append(sorted, &c.models[i])
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Resources.MemoryMB < sorted[j].Resources.MemoryMB
	})
	return sorted[0]
}
