package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// BuildPath converts an ordered position trace into a geom.LineString.
func BuildPath(path core.Polyline) (geom.LineString, error) {
	if len(path) < 2 {
		return geom.LineString{}, fmt.Errorf("path must have at least 2 points, got %d", len(path))
	}

	flatCoords := make([]float64, 0, len(path)*2)
	for _, p := range path {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// PathLength returns the length of a path in meters.
func PathLength(ls geom.LineString) float64 {
	return ls.Length()
}

// SimplifyPath Douglas-Peucker-simplifies a recorded path for export.
// A 60 Hz trace is heavily oversampled on straights; a sub-meter
// threshold keeps corner shape while cutting most points.
func SimplifyPath(ls geom.LineString, threshold float64) (geom.LineString, error) {
	return ls.Simplify(threshold), nil
}

// PathToPolyline converts a geom.LineString back to a position trace.
func PathToPolyline(ls geom.LineString) core.Polyline {
	seq := ls.Coordinates()
	if seq.Length() == 0 {
		return nil
	}
	polyline := make(core.Polyline, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		pt := seq.GetXY(i)
		polyline[i] = core.Position2D{X: pt.X, Y: pt.Y}
	}
	return polyline
}
