// Package schema maps raw graph records onto the outward navigation model.
//
// Graph properties drift in representation (a floor may come back as an
// integer or a string, a building key may be stored as navID or keyID), so
// every record crossing into the domain passes through this package.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ToArea maps a raw graph label onto a catalogued area. Reserved schema labels
// and labels unknown to the catalog are excluded rather than rejected.
func ToArea(catalog domain.AreaCatalog, rawLabel string) (domain.Area, bool) {
	if domain.IsReservedLabel(rawLabel) {
		return domain.Area{}, false
	}
	return catalog.ByLabel(rawLabel)
}

// ToAreas maps raw labels in catalog order, collapsing duplicates.
func ToAreas(catalog domain.AreaCatalog, rawLabels []string) []domain.Area {
	present := make(map[string]struct{}, len(rawLabels))
	for _, label := range rawLabels {
		if area, ok := ToArea(catalog, label); ok {
			present[area.Label] = struct{}{}
		}
	}
	areas := make([]domain.Area, 0, len(present))
	for _, area := range catalog.Areas {
		if _, ok := present[area.Label]; ok {
			areas = append(areas, area)
		}
	}
	return areas
}

// ToBuilding maps a BuildingKey node (or its property map) onto a BuildingEntry.
func ToBuilding(raw any) (domain.BuildingEntry, error) {
	if entry, ok := raw.(domain.BuildingEntry); ok {
		raw = map[string]any{
			"buildingName": entry.BuildingName,
			"thumbnail":    entry.Thumbnail,
			"navID":        entry.NavID,
		}
	}

	props, err := propsOf("BuildingEntry", raw)
	if err != nil {
		return domain.BuildingEntry{}, err
	}

	navID := toString(props["navID"])
	if navID == "" {
		navID = toString(props["keyID"])
	}
	entry := domain.BuildingEntry{
		BuildingName: toString(props["buildingName"]),
		Thumbnail:    toString(props["thumbnail"]),
		NavID:        navID,
	}
	if err := check("BuildingEntry", entry); err != nil {
		return domain.BuildingEntry{}, err
	}
	return entry, nil
}

// ToBuildings maps every record, failing the whole batch on the first malformed entry.
func ToBuildings(raws []any) ([]domain.BuildingEntry, error) {
	entries := make([]domain.BuildingEntry, 0, len(raws))
	for i, raw := range raws {
		entry, err := ToBuilding(raw)
		if err != nil {
			return nil, fmt.Errorf("building record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ToNavigationNode maps a waypoint node onto a NavigationNode. Numeric floors
// are rendered as their decimal string; string floors pass through unchanged.
func ToNavigationNode(raw any) (domain.NavigationNode, error) {
	props, err := propsOf("NavigationNode", raw)
	if err != nil {
		return domain.NavigationNode{}, err
	}

	image := toString(props["image"])
	if image == "" {
		image = toString(props["thumbnail"])
	}
	node := domain.NavigationNode{
		BuildingName: toString(props["buildingName"]),
		Floor:        NormalizeFloor(props["floor"]),
		NavID:        toString(props["navID"]),
		Image:        image,
	}
	if err := check("NavigationNode", node); err != nil {
		return domain.NavigationNode{}, err
	}
	return node, nil
}

// ToNavigationNodes maps a path's nodes in order.
func ToNavigationNodes(raws []any) ([]domain.NavigationNode, error) {
	nodes := make([]domain.NavigationNode, 0, len(raws))
	for i, raw := range raws {
		node, err := ToNavigationNode(raw)
		if err != nil {
			return nil, fmt.Errorf("path node %d: %w", i, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// NormalizeFloor renders a floor property as a string.
func NormalizeFloor(v any) string {
	switch f := v.(type) {
	case nil:
		return ""
	case string:
		return f
	case int:
		return strconv.Itoa(f)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", f)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", f)
	case float32:
		return formatFloat(float64(f))
	case float64:
		return formatFloat(f)
	default:
		return fmt.Sprint(f)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func propsOf(entity string, raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case graph.Node:
		return v.Props, nil
	case *graph.Node:
		if v == nil {
			break
		}
		return v.Props, nil
	case map[string]any:
		return v, nil
	case graph.Record:
		return v, nil
	}
	return nil, &domain.SchemaValidationError{
		Entity: entity,
		Field:  "*",
		Reason: fmt.Sprintf("unsupported record type %T", raw),
	}
}

func check(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.SchemaValidationError{
			Entity: entity,
			Field:  fe.Field(),
			Reason: "is " + fe.Tag(),
		}
	}
	return &domain.SchemaValidationError{Entity: entity, Field: "*", Reason: err.Error()}
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}
