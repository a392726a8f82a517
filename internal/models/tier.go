package models

// Tier is a subscription level stored on the user record.
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierBasic, TierPro, TierPremium:
		return true
	default:
		return false
	}
}

func (t Tier) String() string {
	return string(t)
}
