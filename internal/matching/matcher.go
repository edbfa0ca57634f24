// Package matching ranks candidate pros against a job location. It is pure:
// callers load the candidates, Match only computes.
package matching

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

const (
	// Statute miles.
	earthRadiusMiles = 3959

	// DefaultRadiusMiles applies when a pro has no configured service radius.
	DefaultRadiusMiles = 50
)

type LatLng struct {
	Lat float64
	Lng float64
}

// IsZero reports whether the coordinates are the unusable (0,0) placeholder.
func (l LatLng) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

type Candidate struct {
	ProID       uuid.UUID
	Location    *LatLng
	RadiusMiles float64
	Active      bool
}

type Match struct {
	ProID uuid.UUID
	// DistanceMiles is nil when the job has no location and candidates are
	// returned unranked.
	DistanceMiles *float64
	RadiusMiles   float64
}

// Haversine returns the great-circle distance between two points in statute
// miles.
func Haversine(p1, p2 LatLng) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	dLat := (p2.Lat - p1.Lat) * math.Pi / 180
	dLng := (p2.Lng - p1.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Find returns the eligible candidates sorted nearest-first. A pro is
// eligible when active, located, and within its service radius of the job.
// Without a job location every active candidate is returned unranked.
// Zero eligible pros yields an empty slice, not an error.
func Find(jobLocation *LatLng, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))

	if jobLocation == nil || jobLocation.IsZero() {
		for _, c := range candidates {
			if !c.Active {
				continue
			}
			matches = append(matches, Match{ProID: c.ProID, RadiusMiles: radiusOrDefault(c.RadiusMiles)})
		}
		return matches
	}

	for _, c := range candidates {
		if !c.Active || c.Location == nil || c.Location.IsZero() {
			continue
		}

		radius := radiusOrDefault(c.RadiusMiles)
		distance := Haversine(*jobLocation, *c.Location)
		if distance > radius {
			continue
		}

		d := distance
		matches = append(matches, Match{ProID: c.ProID, DistanceMiles: &d, RadiusMiles: radius})
	}

	// unknown distances sort last; equal distances keep insertion order
	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := matches[i].DistanceMiles, matches[j].DistanceMiles
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return matches
}

func radiusOrDefault(radius float64) float64 {
	if radius <= 0 {
		return DefaultRadiusMiles
	}
	return radius
}
