package search

import (
	"github.com/zots0127/codepoint/pkg/geo"
	"github.com/zots0127/codepoint/pkg/ingest"
	"github.com/zots0127/codepoint/pkg/store"
	"github.com/zots0127/codepoint/pkg/types"
)

// DefaultRadiusKm is the radius search inclusion threshold when none is
// configured.
const DefaultRadiusKm = 0.5

// Converter is the projection dependency of radius search.
type Converter interface {
	ToGrid(lat, lon float64) (eastings, northings int)
	ToGeodetic(eastings, northings int) (lat, lon float64)
}

// Service answers read-only lookups over the postcode store. Safe to call
// concurrently, including during an in-flight import (no isolation
// guarantee is made).
type Service struct {
	store    *store.Store
	conv     Converter
	radiusKm float64
}

func NewService(st *store.Store, conv Converter, radiusKm float64) *Service {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &Service{store: st, conv: conv, radiusKm: radiusKm}
}

// Text finds postcodes containing the normalized term as a substring, one
// fixed-size page at a time, in store order.
func (s *Service) Text(term string, page int) (*types.TextResult, error) {
	term = ingest.Normalize(term)
	if page < 1 {
		page = 1
	}

	rows, err := s.store.SearchText(term, page)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []types.Postcode{}
	}

	return &types.TextResult{Term: term, Page: page, Count: len(rows), Results: rows}, nil
}

// Nearby finds postcodes strictly closer than the configured radius to a
// geodetic origin. Coarse phase: a square of ± radius on both grid axes.
// Fine phase: planar distance against points built by the same projection
// library, keeping the coarse order.
func (s *Service) Nearby(lat, lon float64) (*types.RadiusResult, error) {
	eastings, northings := s.conv.ToGrid(lat, lon)
	delta := int(s.radiusKm * 1000)

	candidates, err := s.store.WithinBounds(
		eastings-delta, eastings+delta,
		northings-delta, northings+delta,
	)
	if err != nil {
		return nil, err
	}

	origin := geo.Point(eastings, northings)
	results := make([]types.NearbyPostcode, 0, len(candidates))
	for _, candidate := range candidates {
		distanceKm := geo.DistanceKm(origin, geo.Point(candidate.Eastings, candidate.Northings))
		if distanceKm >= s.radiusKm {
			continue
		}
		candidateLat, candidateLon := s.conv.ToGeodetic(candidate.Eastings, candidate.Northings)
		results = append(results, types.NearbyPostcode{
			Postcode:   candidate.Postcode,
			DistanceKm: distanceKm,
			Latitude:   candidateLat,
			Longitude:  candidateLon,
		})
	}

	return &types.RadiusResult{RadiusKm: s.radiusKm, Count: len(results), Results: results}, nil
}

// Count reports the number of stored postcodes.
func (s *Service) Count() (int, error) {
	return s.store.CountPostcodes()
}
