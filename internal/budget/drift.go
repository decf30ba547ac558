// Package budget keeps budget items aligned with the crew, cast,
// equipment and locations they are costed against, and generates
// items from a scene's breakdown.
//
// Rates flow both ways.  Forward (resource → item) an item follows a
// rate change only while it still carries the resource's previous rate
// within an absolute tolerance, so hand-edited rates survive.  Reverse
// (item → resource) an item edit is written back only when it is within
// a relative tolerance of the resource's rate.  The two checks are
// deliberately different; a sync written by one direction never
// re-triggers a write in the other.
package budget

import "math"

const (
	// AbsoluteRateEpsilon bounds |item rate - prior resource rate| for
	// a forward update.
	AbsoluteRateEpsilon = 0.01
	// RelativeRateEpsilon bounds |resource rate - item rate| / resource
	// rate for a reverse update.
	RelativeRateEpsilon = 0.01
)

// ForwardRateApplies reports whether an item whose rate is itemRate is
// still tracking a resource whose rate was priorRate.  A prior rate of
// zero is valid here; no division happens.
func ForwardRateApplies(itemRate, priorRate float64) bool {
	return math.Abs(itemRate-priorRate) <= AbsoluteRateEpsilon
}

// ReverseRateApplies reports whether newRate may be written back to a
// resource whose rate is sourceRate.  A resource without a positive
// rate never accepts a reverse update.
func ReverseRateApplies(sourceRate, newRate float64) bool {
	if sourceRate <= 0 {
		return false
	}
	return math.Abs(sourceRate-newRate)/sourceRate < RelativeRateEpsilon
}

// amount is unitRate × quantity rounded to cents.
func amount(rate, quantity float64) float64 {
	return math.Round(rate*quantity*100) / 100
}
