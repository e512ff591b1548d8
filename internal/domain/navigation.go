package domain

// BuildingEntry is the outward view of a building's BuildingKey node.
type BuildingEntry struct {
	BuildingName string `json:"buildingName" validate:"required"`
	Thumbnail    string `json:"thumbnail" validate:"required"`
	NavID        string `json:"navID" validate:"required"`
}

// NavigationNode is a single waypoint of a route.
type NavigationNode struct {
	BuildingName string `json:"buildingName" validate:"required"`
	Floor        string `json:"floor"`
	NavID        string `json:"navID" validate:"required"`
	Image        string `json:"image"`
}

// RouteResult is the assembled answer to a route request. It is never persisted.
type RouteResult struct {
	PathNodes             []NavigationNode  `json:"pathNodes"`
	BuildingThumbnails    map[string]string `json:"buildingThumbnails"`
	InstructionsAvailable map[string]bool   `json:"instructionsAvailable"`
}

// EdgeKey identifies a traversed edge in walking order.
func EdgeKey(fromNavID, toNavID string) string {
	return fromNavID + "-" + toNavID
}
