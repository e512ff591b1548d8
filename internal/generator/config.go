package generator

import "github.com/gophermaps/navigator/internal/domain"

// Config drives the synthetic campus generator.
type Config struct {
	Catalog                   domain.AreaCatalog
	BuildingsPerArea          int
	MaxFloors                 int
	WaypointsPerFloor         int
	BasementChance            float64
	ExtraConnectorChance      float64
	DetailedInstructionChance float64
	Seed                      int64
}

// DefaultConfig returns a small campus suitable for local development.
func DefaultConfig() Config {
	return Config{
		Catalog:                   domain.DefaultAreaCatalog(),
		BuildingsPerArea:          8,
		MaxFloors:                 4,
		WaypointsPerFloor:         3,
		BasementChance:            0.3,
		ExtraConnectorChance:      0.2,
		DetailedInstructionChance: 0.4,
		Seed:                      42,
	}
}
