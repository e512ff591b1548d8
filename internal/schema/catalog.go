package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gophermaps/navigator/internal/domain"
)

// LoadCatalog reads an area catalog from a YAML file. An empty path yields
// the built-in default catalog.
func LoadCatalog(path string) (domain.AreaCatalog, error) {
	if path == "" {
		return domain.DefaultAreaCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AreaCatalog{}, fmt.Errorf("read area catalog %s: %w", path, err)
	}

	var catalog domain.AreaCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return domain.AreaCatalog{}, fmt.Errorf("decode area catalog %s: %w", path, err)
	}
	if err := ValidateCatalog(catalog); err != nil {
		return domain.AreaCatalog{}, fmt.Errorf("area catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ValidateCatalog rejects catalogs with missing fields, duplicate names or
// labels, or areas that claim a reserved building label.
func ValidateCatalog(catalog domain.AreaCatalog) error {
	if err := validate.Struct(catalog); err != nil {
		return err
	}

	names := make(map[domain.AreaName]struct{}, len(catalog.Areas))
	labels := make(map[string]struct{}, len(catalog.Areas))
	for _, area := range catalog.Areas {
		if domain.IsReservedLabel(area.Label) {
			return fmt.Errorf("area %q uses reserved label %q", area.Name, area.Label)
		}
		if _, dup := names[area.Name]; dup {
			return fmt.Errorf("duplicate area name %q", area.Name)
		}
		if _, dup := labels[area.Label]; dup {
			return fmt.Errorf("duplicate area label %q", area.Label)
		}
		names[area.Name] = struct{}{}
		labels[area.Label] = struct{}{}
	}
	return nil
}
