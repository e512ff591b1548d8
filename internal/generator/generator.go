package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/service"
)

// Dataset is a complete campus: buildings, their waypoints and the walkable
// connections between them.
type Dataset struct {
	Version     string                    `yaml:"version" json:"version"`
	Buildings   []service.BuildingInput   `yaml:"buildings" json:"buildings"`
	Waypoints   []service.WaypointInput   `yaml:"waypoints" json:"waypoints"`
	Connections []service.ConnectionInput `yaml:"connections" json:"connections"`
}

// Generator produces synthetic campus graphs aligned with the navigation schema.
//
// Every area is a connected chain of buildings joined by tunnels or skyways;
// areas are not connected to each other. Within a building each floor is a
// corridor of waypoints, floors are linked by stairs at their first waypoint,
// and the BuildingKey node opens onto the lowest above-ground floor.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	names []string
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if len(cfg.Catalog.Areas) == 0 {
		cfg.Catalog = def.Catalog
	}
	if cfg.BuildingsPerArea <= 0 {
		cfg.BuildingsPerArea = def.BuildingsPerArea
	}
	if cfg.MaxFloors <= 0 {
		cfg.MaxFloors = def.MaxFloors
	}
	if cfg.WaypointsPerFloor <= 0 {
		cfg.WaypointsPerFloor = def.WaypointsPerFloor
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		names: defaultBuildingNames(),
	}
}

type building struct {
	navID  string
	ground string
	exit   string
}

// Generate synthesises a campus. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	ds := Dataset{Version: g.cfg.Catalog.Version}
	used := make(map[string]struct{})

	for ai, area := range g.cfg.Catalog.Areas {
		var chain []building
		for bi := 0; bi < g.cfg.BuildingsPerArea; bi++ {
			if err := ctx.Err(); err != nil {
				return Dataset{}, err
			}
			name := g.uniqueName(used)
			code := fmt.Sprintf("%s%02d", areaCode(area, ai), bi+1)
			chain = append(chain, g.building(&ds, area, name, code))
		}

		for i := 1; i < len(chain); i++ {
			g.connect(&ds, chain[i-1].exit, chain[i].ground)
		}
		for i := 0; i+2 < len(chain); i++ {
			if g.rand.Float64() < g.cfg.ExtraConnectorChance {
				g.connect(&ds, chain[i].exit, chain[i+2].ground)
			}
		}
	}
	return ds, nil
}

func (g *Generator) building(ds *Dataset, area domain.Area, name, code string) building {
	keyID := code + "_KEY"
	ds.Buildings = append(ds.Buildings, service.BuildingInput{
		Area:      string(area.Name),
		Name:      name,
		Thumbnail: strings.ReplaceAll(name, " ", "") + ".jpg",
		NavID:     keyID,
	})

	floors := g.floors()
	var prevStair, ground, exit string
	for _, floor := range floors {
		var prev string
		for w := 1; w <= g.cfg.WaypointsPerFloor; w++ {
			navID := fmt.Sprintf("%s_F%s_W%d", code, floor, w)
			ds.Waypoints = append(ds.Waypoints, service.WaypointInput{
				Area:     string(area.Name),
				Building: name,
				Floor:    floor,
				NavID:    navID,
				Image:    strings.ToLower(navID) + ".jpg",
			})
			if prev != "" {
				g.connect(ds, prev, navID)
			}
			prev = navID
		}
		first := fmt.Sprintf("%s_F%s_W1", code, floor)
		if prevStair != "" {
			g.connect(ds, prevStair, first)
		}
		prevStair = first
		if ground == "" && floor != "B" {
			ground, exit = first, prev
		}
	}
	g.connect(ds, keyID, ground)
	return building{navID: keyID, ground: ground, exit: exit}
}

func (g *Generator) floors() []string {
	var floors []string
	if g.rand.Float64() < g.cfg.BasementChance {
		floors = append(floors, "B")
	}
	count := 1 + g.rand.Intn(g.cfg.MaxFloors)
	for f := 1; f <= count; f++ {
		floors = append(floors, strconv.Itoa(f))
	}
	return floors
}

func (g *Generator) connect(ds *Dataset, from, to string) {
	ds.Connections = append(ds.Connections, service.ConnectionInput{
		From:                    from,
		To:                      to,
		HasDetailedInstructions: g.rand.Float64() < g.cfg.DetailedInstructionChance,
	})
}

func (g *Generator) uniqueName(used map[string]struct{}) string {
	for attempt := 0; ; attempt++ {
		base := g.names[g.rand.Intn(len(g.names))]
		name := base + " Hall"
		if attempt >= len(g.names) {
			name = fmt.Sprintf("%s Hall %d", base, attempt)
		}
		if _, ok := used[name]; !ok {
			used[name] = struct{}{}
			return name
		}
	}
}

func areaCode(area domain.Area, idx int) string {
	var b strings.Builder
	for _, r := range area.Label {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("A%d", idx)
	}
	return b.String()
}

func defaultBuildingNames() []string {
	return []string{
		"Keller", "Walter", "Coffman", "Amundson", "Lind", "Tate", "Smith", "Kolthoff",
		"Pillsbury", "Appleby", "Ford", "Murphy", "Folwell", "Jones", "Nicholson", "Vincent",
		"Anderson", "Blegen", "Heller", "Willey", "Wilson", "Rarig", "Hanson", "Mondale",
		"Coffey", "McNeal", "Borlaug", "Magrath", "Skok", "Stakman", "Kaufert", "Haecker",
	}
}
