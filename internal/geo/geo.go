package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// Recording positions live on a local meter grid. For live-map overlays
// and exports the grid is anchored at a real-world origin and projected
// through EPSG:3857, whose unit near the origin is close enough to a
// ground meter for street-scale tracks.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Ref anchors the local meter grid at a WGS84 origin.
type Ref struct {
	originX float64 // origin in EPSG:3857
	originY float64

	toLonLat func(x, y, z float64) (float64, float64, float64)
}

// NewRef creates an anchor at the given WGS84 origin.
func NewRef(originLat, originLon float64) (*Ref, error) {
	if originLat < -85 || originLat > 85 || originLon < -180 || originLon > 180 {
		return nil, ErrInvalidCoordinates
	}

	epsg := wgs84.EPSG()
	to3857 := epsg.Transform(4326, 3857)
	x, y, _ := to3857(originLon, originLat, 0)

	return &Ref{
		originX:  x,
		originY:  y,
		toLonLat: epsg.Transform(3857, 4326),
	}, nil
}

// ToWebMercator converts a local position to an EPSG:3857 point.
func (r *Ref) ToWebMercator(p core.Position2D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: r.originX + p.X, Y: r.originY + p.Y},
	})
}

// ToLonLat converts a local position to WGS84 longitude/latitude.
func (r *Ref) ToLonLat(p core.Position2D) (lon, lat float64) {
	lon, lat, _ = r.toLonLat(r.originX+p.X, r.originY+p.Y, 0)
	return lon, lat
}

// Origin3857 returns the anchor in EPSG:3857 meters.
func (r *Ref) Origin3857() (x, y float64) {
	return r.originX, r.originY
}
