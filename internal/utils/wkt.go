package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/motowave/motowave/internal/pkg/models"
)

// WKT encoding for the remote trip store. The store's geometry convention
// is longitude first, so every pair below is "lon lat".

// ToLineString encodes a route as a WKT LINESTRING
func ToLineString(route []models.Coordinate) string {
	var b strings.Builder
	b.WriteString("LINESTRING(")
	for i, p := range route {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(p.Longitude, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// ToPoint encodes a single coordinate as a WKT POINT
func ToPoint(c models.Coordinate) string {
	return fmt.Sprintf("POINT(%s %s)",
		strconv.FormatFloat(c.Longitude, 'f', -1, 64),
		strconv.FormatFloat(c.Latitude, 'f', -1, 64))
}

// ParseLineString decodes a WKT LINESTRING back into route coordinates.
// Inverse of ToLineString up to floating-point precision.
func ParseLineString(wkt string) ([]models.Coordinate, error) {
	body, err := stripWKTWrapper(wkt, "LINESTRING")
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []models.Coordinate{}, nil
	}

	pairs := strings.Split(body, ",")
	route := make([]models.Coordinate, 0, len(pairs))
	for _, pair := range pairs {
		c, err := parseLonLat(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid linestring pair %q: %w", pair, err)
		}
		route = append(route, c)
	}
	return route, nil
}

// ParsePoint decodes a WKT POINT. Inverse of ToPoint.
func ParsePoint(wkt string) (models.Coordinate, error) {
	body, err := stripWKTWrapper(wkt, "POINT")
	if err != nil {
		return models.Coordinate{}, err
	}
	c, err := parseLonLat(body)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid point %q: %w", wkt, err)
	}
	return c, nil
}

func stripWKTWrapper(wkt, kind string) (string, error) {
	s := strings.TrimSpace(wkt)
	if !strings.HasPrefix(strings.ToUpper(s), kind) {
		return "", fmt.Errorf("not a %s: %q", kind, wkt)
	}
	s = strings.TrimSpace(s[len(kind):])
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("malformed %s: %q", kind, wkt)
	}
	return strings.TrimSpace(s[1 : len(s)-1]), nil
}

func parseLonLat(pair string) (models.Coordinate, error) {
	fields := strings.Fields(strings.TrimSpace(pair))
	if len(fields) != 2 {
		return models.Coordinate{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid latitude: %w", err)
	}
	return models.Coordinate{Latitude: lat, Longitude: lon}, nil
}
