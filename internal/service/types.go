package service

// BuildingInput describes a building as it appears in a campus dataset file.
type BuildingInput struct {
	Area      string `yaml:"area" json:"area"`
	Name      string `yaml:"name" json:"name"`
	Thumbnail string `yaml:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	NavID     string `yaml:"navID" json:"navID"`
}

// WaypointInput describes a navigation waypoint inside a building.
type WaypointInput struct {
	Area     string `yaml:"area" json:"area"`
	Building string `yaml:"building" json:"building"`
	Floor    string `yaml:"floor" json:"floor"`
	NavID    string `yaml:"navID" json:"navID"`
	Image    string `yaml:"image,omitempty" json:"image,omitempty"`
}

// ConnectionInput describes an undirected walkable edge between two waypoints.
type ConnectionInput struct {
	From                    string `yaml:"from" json:"from"`
	To                      string `yaml:"to" json:"to"`
	HasDetailedInstructions bool   `yaml:"hasDetailedInstructions" json:"hasDetailedInstructions"`
}
