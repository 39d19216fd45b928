package models

// RiskLevel is a coarse classification of a deletion's blast radius, derived
// from the count of active dependent records. There is no "none" level; the
// floor for any deletion is medium.
type RiskLevel string

const (
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskMedium:   0,
	RiskHigh:     1,
	RiskCritical: 2,
}

// AtLeast reports whether the level is at or above the given threshold.
func (r RiskLevel) AtLeast(threshold RiskLevel) bool {
	return riskRank[r] >= riskRank[threshold]
}

// Valid reports whether the level is one of the known values.
func (r RiskLevel) Valid() bool {
	_, ok := riskRank[r]
	return ok
}

// RiskForDependents maps an active-dependent count onto a risk level.
// Thresholds: 0 dependents is the medium baseline, 1-10 is high, more than 10
// is critical.
func RiskForDependents(count int) RiskLevel {
	switch {
	case count > 10:
		return RiskCritical
	case count > 0:
		return RiskHigh
	default:
		return RiskMedium
	}
}
