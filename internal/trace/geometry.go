package trace

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the epicentral distance in kilometers along the great
// circle from the event to the station.
func (t *TraceWindow) DistanceKm() float64 {
	p1 := s2.LatLngFromDegrees(t.EventLatitude, t.EventLongitude)
	p2 := s2.LatLngFromDegrees(t.StationLatitude, t.StationLongitude)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// Azimuth returns the forward azimuth from the event to the station in
// degrees, 0 at north, increasing eastward.
func (t *TraceWindow) Azimuth() float64 {
	return bearing(t.EventLatitude, t.EventLongitude,
		t.StationLatitude, t.StationLongitude)
}

// BackAzimuth returns the azimuth from the station back to the event.
func (t *TraceWindow) BackAzimuth() float64 {
	return bearing(t.StationLatitude, t.StationLongitude,
		t.EventLatitude, t.EventLongitude)
}

func bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	phi1 := p1.Lat.Radians()
	phi2 := p2.Lat.Radians()
	dLon := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
