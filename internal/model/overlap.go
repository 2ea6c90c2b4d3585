package model

// Overlap is the qualitative occultation geometry for one sample.
// Keep these values stable; they are written to reports.
type Overlap string

const (
	OverlapNone    Overlap = "NONE"    // disks do not touch, or body is behind
	OverlapPartial Overlap = "PARTIAL" // ingress, egress or grazing
	OverlapInside  Overlap = "INSIDE"  // body disk entirely within the central disk
	OverlapTotal   Overlap = "TOTAL"   // central disk entirely covered
)

// OverlapFor classifies sky separation b against radius ratio p, both in
// central radii.
func OverlapFor(b, p float64) Overlap {
	switch {
	case p <= 0 || b >= 1+p:
		return OverlapNone
	case p >= 1+b:
		return OverlapTotal
	case b+p <= 1:
		return OverlapInside
	default:
		return OverlapPartial
	}
}

// Occulting reports whether any part of the central disk is covered.
func (o Overlap) Occulting() bool { return o != OverlapNone }
