package out

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"microlearn/internal/modules/learning/domain"
	learningout "microlearn/internal/modules/learning/port/out"
)

type catalogFile struct {
	Modules []moduleYAML `yaml:"modules"`
}

type moduleYAML struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Duration    int               `yaml:"duration"`
	Difficulty  string            `yaml:"difficulty"`
	Completed   bool              `yaml:"completed"`
	Progress    int               `yaml:"progress"`
	Content     []contentItemYAML `yaml:"content"`
}

type contentItemYAML struct {
	Type string         `yaml:"type"`
	Data map[string]any `yaml:"data"`
}

type BuiltinCatalog struct{}

func NewBuiltinCatalog() learningout.CatalogSource {
	return BuiltinCatalog{}
}

func (BuiltinCatalog) Load(context.Context) ([]domain.Module, error) {
	return domain.SeedModules(), nil
}

// YAMLCatalog reads the module catalog from a YAML file with a top-level modules list.
type YAMLCatalog struct {
	path string
}

func NewYAMLCatalog(path string) learningout.CatalogSource {
	return &YAMLCatalog{path: path}
}

func (c *YAMLCatalog) Load(_ context.Context) ([]domain.Module, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", c.path, err)
	}
	out := make([]domain.Module, 0, len(file.Modules))
	for _, m := range file.Modules {
		module := domain.Module{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Category:    m.Category,
			Duration:    m.Duration,
			Difficulty:  domain.Difficulty(m.Difficulty),
			Completed:   m.Completed,
			Progress:    m.Progress,
			Content:     make([]domain.ContentItem, 0, len(m.Content)),
		}
		for _, item := range m.Content {
			module.Content = append(module.Content, domain.ContentItem{Type: domain.ContentType(item.Type), Data: item.Data})
		}
		if err := module.Validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", c.path, err)
		}
		out = append(out, module)
	}
	return out, nil
}
