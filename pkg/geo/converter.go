package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/wroge/wgs84"
)

// Converter translates between WGS84 geodetic degrees (EPSG:4326) and the
// British National Grid (EPSG:27700, OSGB36 datum, meters). The projection
// math is delegated entirely to the wgs84 library.
type Converter struct {
	toGrid     wgs84.Func
	toGeodetic wgs84.Func
}

func NewConverter() *Converter {
	grid := wgs84.OSGB36NationalGrid()
	return &Converter{
		toGrid:     wgs84.LonLat().To(grid),
		toGeodetic: grid.To(wgs84.LonLat()),
	}
}

// ToGrid projects geodetic degrees onto the grid, truncated to int meters.
func (c *Converter) ToGrid(lat, lon float64) (eastings, northings int) {
	east, north, _ := c.toGrid(lon, lat, 0)
	return int(east), int(north)
}

// ToGeodetic converts a grid reference back to degrees, rounded to 6
// decimal places for client consumption.
func (c *Converter) ToGeodetic(eastings, northings int) (lat, lon float64) {
	x, y, _ := c.toGeodetic(float64(eastings), float64(northings), 0)
	return round6(y), round6(x)
}

// Point builds a projected-plane point. Distance math must run against
// points built here so both phases of the search share one unit system.
func Point(eastings, northings int) orb.Point {
	return orb.Point{float64(eastings), float64(northings)}
}

// DistanceKm is the planar distance between two grid points in kilometers,
// rounded to 3 decimal places.
func DistanceKm(a, b orb.Point) float64 {
	return math.Round(planar.Distance(a, b)) / 1000
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
