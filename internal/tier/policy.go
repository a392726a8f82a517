// Package tier holds the subscription tier policy table and the daily
// token budget gate that enforces it.
package tier

import "github.com/aman-churiwal/tutor-gateway/internal/models"

const (
	// Unlimited is the daily limit sentinel for tiers with no token cap.
	Unlimited = -1
	// Unmetered is the daily limit sentinel for tiers that are not token metered.
	Unmetered = 0
)

// Policy describes what a subscription tier gets.
type Policy struct {
	Name              string   `json:"name"`
	Price             int      `json:"price"` // INR per month
	Model             string   `json:"model"`
	Features          []string `json:"features"`
	TokenLimit        int      `json:"tokenLimit"`
	RequestsPerMinute int      `json:"requestsPerMinute"`
}

// Metered reports whether the policy counts tokens against a daily limit.
func (p Policy) Metered() bool {
	return p.TokenLimit != Unlimited && p.TokenLimit != Unmetered
}

var policies = map[models.Tier]Policy{
	models.TierFree: {
		Name:              "Free",
		Price:             0,
		Model:             "gpt-4o-mini",
		Features:          []string{"Doubt solving", "Derivation viewer"},
		TokenLimit:        Unmetered,
		RequestsPerMinute: 10,
	},
	models.TierBasic: {
		Name:              "Basic",
		Price:             199,
		Model:             "gpt-4o-mini",
		Features:          []string{"All lessons", "Story mode", "Quizzes", "3D visualizations"},
		TokenLimit:        10000,
		RequestsPerMinute: 30,
	},
	models.TierPro: {
		Name:              "Pro",
		Price:             899,
		Model:             "gpt-4o",
		Features:          []string{"All Basic features", "Advanced AI", "More daily tokens"},
		TokenLimit:        50000,
		RequestsPerMinute: 60,
	},
	models.TierPremium: {
		Name:              "Premium",
		Price:             2999,
		Model:             "gpt-4o",
		Features:          []string{"Unlimited access", "Best AI model", "Priority support"},
		TokenLimit:        Unlimited,
		RequestsPerMinute: 120,
	},
}

// Lookup returns the policy for a tier. Unknown tiers get the free policy.
func Lookup(t models.Tier) Policy {
	if p, ok := policies[t]; ok {
		return p
	}
	return policies[models.TierFree]
}

// ModelFor returns the completion model the tier is entitled to.
func ModelFor(t models.Tier) string {
	return Lookup(t).Model
}

// All returns a copy of the policy table keyed by tier name.
func All() map[string]Policy {
	out := make(map[string]Policy, len(policies))
	for t, p := range policies {
		p.Features = append([]string(nil), p.Features...)
		out[string(t)] = p
	}
	return out
}
