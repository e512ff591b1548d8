package domain

import "strings"

// AreaName is a member of the closed set of campus areas known at deploy time.
type AreaName string

// Reserved labels carried by building nodes that never denote an area.
const (
	LabelBuilding    = "Building"
	LabelBuildingKey = "BuildingKey"
)

// Area groups a set of buildings. Label is the graph label attached to the
// area's building nodes; it may differ from the human readable Name.
type Area struct {
	Name      AreaName `json:"name" yaml:"name" validate:"required"`
	Label     string   `json:"-" yaml:"label" validate:"required"`
	Thumbnail string   `json:"thumbnail" yaml:"thumbnail" validate:"required"`
}

// AreaCatalog is the versioned, ordered enumeration of valid areas.
type AreaCatalog struct {
	Version string `yaml:"version"`
	Areas   []Area `yaml:"areas" validate:"required,min=1,dive"`
}

// DefaultAreaCatalog mirrors the areas deployed with the first public release.
func DefaultAreaCatalog() AreaCatalog {
	return AreaCatalog{
		Version: "1",
		Areas: []Area{
			{Name: "East Bank", Label: "EastBank", Thumbnail: "EastBank.jpg"},
			{Name: "West Bank", Label: "WestBank", Thumbnail: "WestBank.jpg"},
			{Name: "St Paul Campus", Label: "StPaul", Thumbnail: "StPaul.jpg"},
		},
	}
}

// Lookup resolves either an area name or its graph label.
func (c AreaCatalog) Lookup(nameOrLabel string) (Area, bool) {
	key := strings.TrimSpace(nameOrLabel)
	if key == "" {
		return Area{}, false
	}
	for _, area := range c.Areas {
		if string(area.Name) == key || area.Label == key {
			return area, true
		}
	}
	return Area{}, false
}

// ByLabel resolves an area strictly by graph label.
func (c AreaCatalog) ByLabel(label string) (Area, bool) {
	for _, area := range c.Areas {
		if area.Label == label {
			return area, true
		}
	}
	return Area{}, false
}

// IsReservedLabel reports whether a label is internal to the building schema.
func IsReservedLabel(label string) bool {
	return label == LabelBuilding || label == LabelBuildingKey
}
