package services

import (
	"testing"

	"truck-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeepsValidTokensInOrder(t *testing.T) {
	areas := []domain.HighRiskArea{
		{ID: "a", Coordinates: "100.1,13.1 junk 100.2,13.2 100.3 100.4,13.4"},
	}

	got := ExclusionZoneBuilder{}.Build(areas)

	require.Len(t, got.Zones, 1)
	assert.Equal(t, "a", got.Zones[0].AreaID)
	assert.Equal(t, []domain.GeoPoint{
		{Lat: 13.1, Lng: 100.1},
		{Lat: 13.2, Lng: 100.2},
		{Lat: 13.4, Lng: 100.4},
	}, got.Zones[0].Points)
	assert.Equal(t, 2, got.DiscardedTokens)
	assert.Contains(t, got.Warnings(), "high-risk areas: skipped 2 malformed coordinate tokens")
}

func TestBuildDropsAreasWithoutValidPoints(t *testing.T) {
	areas := []domain.HighRiskArea{
		{ID: "first", Coordinates: "1,1 2,2 3,1"},
		{ID: "empty", Coordinates: "nope x,y"},
		{ID: "blank", Coordinates: ""},
		{ID: "last", Coordinates: "5,5"},
	}

	got := ExclusionZoneBuilder{}.Build(areas)

	require.Len(t, got.Zones, 2)
	assert.Equal(t, "first", got.Zones[0].AreaID)
	assert.Equal(t, "last", got.Zones[1].AreaID)
	assert.Equal(t, 2, got.EmptyAreas)
	for _, z := range got.Zones {
		assert.NotEmpty(t, z.Points)
	}
}

func TestBuildTruncatesFromTheEndByZoneCount(t *testing.T) {
	areas := []domain.HighRiskArea{
		{ID: "1", Coordinates: "1,1"},
		{ID: "2", Coordinates: "2,2"},
		{ID: "3", Coordinates: "3,3"},
		{ID: "4", Coordinates: "4,4"},
	}

	got := ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxZones: 2}}.Build(areas)

	require.Len(t, got.Zones, 2)
	assert.Equal(t, "1", got.Zones[0].AreaID)
	assert.Equal(t, "2", got.Zones[1].AreaID)
	assert.Equal(t, 2, got.TruncatedZones)
	assert.Contains(t, got.Warnings(), "exclusion zones truncated: dropped 2 zones over provider limit")
}

func TestBuildTruncatesByVertexBudget(t *testing.T) {
	areas := []domain.HighRiskArea{
		{ID: "small", Coordinates: "1,1 1,2"},
		{ID: "big", Coordinates: "2,2 2,3 3,3 3,2"},
		{ID: "tiny", Coordinates: "4,4"},
	}

	got := ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxVertices: 5}}.Build(areas)

	// "tiny" would fit on its own but truncation only ever cuts a suffix.
	require.Len(t, got.Zones, 1)
	assert.Equal(t, "small", got.Zones[0].AreaID)
	assert.Equal(t, 2, got.TruncatedZones)
}

func TestBuildCountsEncodedRingVertices(t *testing.T) {
	// Degenerate zones are boxed into five vertices each.
	got := ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxVertices: 4}}.Build([]domain.HighRiskArea{
		{ID: "point", Coordinates: "1,1"},
		{ID: "pair", Coordinates: "2,2 2,3"},
	})
	assert.Empty(t, got.Zones)
	assert.Equal(t, 2, got.TruncatedZones)

	// Three open points are closed with a fourth.
	triangle := []domain.HighRiskArea{{ID: "t", Coordinates: "1,1 2,2 3,1"}}
	assert.Empty(t, ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxVertices: 3}}.Build(triangle).Zones)
	assert.Len(t, ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxVertices: 4}}.Build(triangle).Zones, 1)
}

func TestBuildWithoutDegradationHasNoWarnings(t *testing.T) {
	got := ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxZones: 5, MaxVertices: 50}}.Build([]domain.HighRiskArea{
		{ID: "a", Coordinates: "1,1 2,2 3,1"},
	})
	assert.Empty(t, got.Warnings())
	assert.Zero(t, got.TruncatedZones)
}
