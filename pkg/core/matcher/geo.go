package matcher

import (
	"math"
	"slices"
)

const earthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance between two coordinates in miles
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// proximity describes how close two candidates live
type proximity int

const (
	proximityUnknown proximity = iota
	proximitySameNeighborhood
	proximityNearby
	proximityFar
)

// proximityOf compares two candidates using, in order: shared neighborhood, coordinates, adjacency
func proximityOf(a, b *CandidateProfile, rule *LocationRule) proximity {
	if a.NeighborhoodID != "" && a.NeighborhoodID == b.NeighborhoodID {
		return proximitySameNeighborhood
	}

	if a.HasCoordinates() && b.HasCoordinates() {
		distance := HaversineMiles(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if distance <= rule.MaxDistanceMiles {
			return proximityNearby
		}
		return proximityFar
	}

	if a.NeighborhoodID == "" || b.NeighborhoodID == "" {
		return proximityUnknown
	}

	neighborsA, knownA := rule.Adjacency[a.NeighborhoodID]
	neighborsB, knownB := rule.Adjacency[b.NeighborhoodID]
	if !knownA && !knownB {
		return proximityUnknown
	}

	if slices.Contains(neighborsA, b.NeighborhoodID) || slices.Contains(neighborsB, a.NeighborhoodID) {
		return proximityNearby
	}

	return proximityFar
}
