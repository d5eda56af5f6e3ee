package enums

import "fmt"

// PartnerStatus maps to the partner_status enum in Postgres.
type PartnerStatus string

const (
	PartnerStatusDraft          PartnerStatus = "draft"
	PartnerStatusPendingL1      PartnerStatus = "pending_l1"
	PartnerStatusPendingL2      PartnerStatus = "pending_l2"
	PartnerStatusApproved       PartnerStatus = "approved"
	PartnerStatusOnHold         PartnerStatus = "on_hold"
	PartnerStatusRejected       PartnerStatus = "rejected"
	PartnerStatusMoreInfoNeeded PartnerStatus = "more_info_needed"
)

var validPartnerStatuses = []PartnerStatus{
	PartnerStatusDraft,
	PartnerStatusPendingL1,
	PartnerStatusPendingL2,
	PartnerStatusApproved,
	PartnerStatusOnHold,
	PartnerStatusRejected,
	PartnerStatusMoreInfoNeeded,
}

// String implements fmt.Stringer.
func (p PartnerStatus) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical partner_status enum.
func (p PartnerStatus) IsValid() bool {
	for _, candidate := range validPartnerStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartnerStatus converts raw input into PartnerStatus.
func ParsePartnerStatus(value string) (PartnerStatus, error) {
	for _, candidate := range validPartnerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner status %q", value)
}

// PartnerTier maps to the partner_tier enum in Postgres.
type PartnerTier string

const (
	PartnerTierBronze   PartnerTier = "bronze"
	PartnerTierSilver   PartnerTier = "silver"
	PartnerTierGold     PartnerTier = "gold"
	PartnerTierPlatinum PartnerTier = "platinum"
)

var validPartnerTiers = []PartnerTier{
	PartnerTierBronze,
	PartnerTierSilver,
	PartnerTierGold,
	PartnerTierPlatinum,
}

// String implements fmt.Stringer.
func (p PartnerTier) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical partner_tier enum.
func (p PartnerTier) IsValid() bool {
	for _, candidate := range validPartnerTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartnerTier converts raw input into PartnerTier.
func ParsePartnerTier(value string) (PartnerTier, error) {
	for _, candidate := range validPartnerTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner tier %q", value)
}

// RejectionLevel records which review stage produced a rejection.
type RejectionLevel string

const (
	RejectionLevelL1    RejectionLevel = "l1"
	RejectionLevelL2    RejectionLevel = "l2"
	RejectionLevelFinal RejectionLevel = "final"
)

var validRejectionLevels = []RejectionLevel{
	RejectionLevelL1,
	RejectionLevelL2,
	RejectionLevelFinal,
}

// String implements fmt.Stringer.
func (r RejectionLevel) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical rejection_level enum.
func (r RejectionLevel) IsValid() bool {
	for _, candidate := range validRejectionLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRejectionLevel converts raw input into RejectionLevel.
func ParseRejectionLevel(value string) (RejectionLevel, error) {
	for _, candidate := range validRejectionLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rejection level %q", value)
}

// PayoutPeriod maps to the payout_period enum in Postgres.
type PayoutPeriod string

const (
	PayoutPeriodWeekly    PayoutPeriod = "weekly"
	PayoutPeriodBiweekly  PayoutPeriod = "biweekly"
	PayoutPeriodMonthly   PayoutPeriod = "monthly"
	PayoutPeriodQuarterly PayoutPeriod = "quarterly"
)

var validPayoutPeriods = []PayoutPeriod{
	PayoutPeriodWeekly,
	PayoutPeriodBiweekly,
	PayoutPeriodMonthly,
	PayoutPeriodQuarterly,
}

// String implements fmt.Stringer.
func (p PayoutPeriod) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical payout_period enum.
func (p PayoutPeriod) IsValid() bool {
	for _, candidate := range validPayoutPeriods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutPeriod converts raw input into PayoutPeriod.
func ParsePayoutPeriod(value string) (PayoutPeriod, error) {
	for _, candidate := range validPayoutPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout period %q", value)
}
