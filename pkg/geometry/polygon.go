package geometry

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInRings tests a point against a set of closed rings using the
// even-odd rule. Crossing an odd number of ring boundaries means the
// point is inside; holes therefore cancel the outer ring that contains
// them.
func PointInRings(p Point2D, rings [][]Point2D) bool {
	inside := false
	for _, ring := range rings {
		if PointInPolygon(p, ring) {
			inside = !inside
		}
	}
	return inside
}
