package replenishment

import (
	"fmt"
	"strings"
)

// ReplenishmentMethod is the ordering policy attached to a classification cell.
type ReplenishmentMethod string

const (
	MethodAuto         ReplenishmentMethod = "auto"
	MethodManualReview ReplenishmentMethod = "manual_review"
	MethodOnDemand     ReplenishmentMethod = "on_demand"
)

// ParseReplenishmentMethod returns the method for a stored value (case-insensitive).
func ParseReplenishmentMethod(s string) (ReplenishmentMethod, error) {
	m := ReplenishmentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown replenishment method %q", s)
	}
	return m, nil
}

func (m ReplenishmentMethod) Valid() bool {
	switch m {
	case MethodAuto, MethodManualReview, MethodOnDemand:
		return true
	}
	return false
}

func (m ReplenishmentMethod) String() string { return string(m) }

func (m ReplenishmentMethod) MarshalText() ([]byte, error) { return []byte(m), nil }

func (m *ReplenishmentMethod) UnmarshalText(b []byte) error {
	v, err := ParseReplenishmentMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ReviewFrequency controls how often a SKU is looked at for non-critical orders.
type ReviewFrequency string

const (
	ReviewWeekly   ReviewFrequency = "weekly"
	ReviewBiweekly ReviewFrequency = "biweekly"
	ReviewMonthly  ReviewFrequency = "monthly"
)

// ParseReviewFrequency returns the frequency for a stored value (case-insensitive).
func ParseReviewFrequency(s string) (ReviewFrequency, error) {
	f := ReviewFrequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown review frequency %q", s)
	}
	return f, nil
}

func (f ReviewFrequency) Valid() bool {
	switch f {
	case ReviewWeekly, ReviewBiweekly, ReviewMonthly:
		return true
	}
	return false
}

// CycleWeeks is the number of weeks between two reviews.
func (f ReviewFrequency) CycleWeeks() int {
	switch f {
	case ReviewMonthly:
		return 4
	case ReviewBiweekly:
		return 2
	default:
		return 1
	}
}

// IsReviewWeek reports whether week falls on this frequency's review cadence.
func (f ReviewFrequency) IsReviewWeek(week int) bool {
	switch f {
	case ReviewBiweekly:
		return week%2 == 0
	case ReviewMonthly:
		return week%4 == 0
	default:
		return true
	}
}

func (f ReviewFrequency) String() string { return string(f) }

func (f ReviewFrequency) MarshalText() ([]byte, error) { return []byte(f), nil }

func (f *ReviewFrequency) UnmarshalText(b []byte) error {
	v, err := ParseReviewFrequency(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Urgency is the overall classification of a SKU projection.
type Urgency string

const (
	UrgencyOK       Urgency = "OK"
	UrgencyWarning  Urgency = "WARNING"
	UrgencyCritical Urgency = "CRITICAL"
)

// ParseUrgency returns the urgency for a value (case-insensitive).
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(s)))
	switch u {
	case UrgencyOK, UrgencyWarning, UrgencyCritical:
		return u, nil
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

// rank orders urgencies for sorting, most urgent first.
func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyWarning:
		return 1
	case UrgencyOK:
		return 2
	default:
		return 3
	}
}

func (u Urgency) String() string { return string(u) }

// WeekStatus labels a single simulated week.
type WeekStatus string

const (
	StatusOK       WeekStatus = "OK"
	StatusWarning  WeekStatus = "WARNING"
	StatusCritical WeekStatus = "CRITICAL"
	StatusStockout WeekStatus = "STOCKOUT"
)

func (s WeekStatus) String() string { return string(s) }

// RiskType is the most severe threshold a projection curve crosses.
type RiskType string

const (
	RiskStockout     RiskType = "STOCKOUT"
	RiskBelowSafety  RiskType = "BELOW_SAFETY"
	RiskBelowReorder RiskType = "BELOW_REORDER"
	RiskLowCover     RiskType = "LOW_COVER"
)

func (r RiskType) String() string { return string(r) }

// MitigationStatus says whether a suggested order restores the safety buffer.
type MitigationStatus string

const (
	MitigationCovered MitigationStatus = "COVERED"
	MitigationPartial MitigationStatus = "PARTIAL"
	MitigationNone    MitigationStatus = "NONE"
)

func (m MitigationStatus) String() string { return string(m) }

// DemandSource records where a projection's weekly demand came from.
type DemandSource string

const (
	DemandForecast   DemandSource = "forecast"
	DemandHistorical DemandSource = "historical"
)

func (d DemandSource) String() string { return string(d) }
