package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogFile is the top-level structure of the embedded board catalog.
type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// ParseCatalog decodes a board catalog document. Unknown keys are rejected
// to catch typos in authored catalogs.
func ParseCatalog(data []byte) ([]Category, error) {
	var cf catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("content: decode catalog yaml: %w", err)
	}
	if len(cf.Categories) == 0 {
		return nil, fmt.Errorf("content: catalog holds no categories")
	}
	for _, cat := range cf.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("content: catalog category with empty name")
		}
		if cat.Icon == "" {
			return nil, fmt.Errorf("content: catalog category %q has no icon", cat.Name)
		}
	}
	return cf.Categories, nil
}

var (
	templatesOnce sync.Once
	templates     []Category
)

// Templates returns deep copies of the built-in template catalog. The
// catalog is constant for the process lifetime; copies guarantee callers can
// never alias or mutate the pristine template words.
func Templates() []Category {
	templatesOnce.Do(func() {
		parsed, err := ParseCatalog(catalogYAML)
		if err != nil {
			// The catalog is embedded at compile time; failing to parse it
			// is a build defect, not a runtime condition.
			panic(err)
		}
		templates = parsed
	})
	return CloneAll(templates)
}
