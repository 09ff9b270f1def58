package quota

import "fmt"

type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPro       Tier = "pro"
)

// Unlimited marks a tier with no todo cap.
const Unlimited = -1

// Limit returns the maximum todo count for a tier.
func Limit(tier Tier) int {
	switch tier {
	case TierPro:
		return Unlimited
	case TierFree:
		return 5
	default:
		return 3
	}
}

// ForUser maps the caller's auth and subscription state to a tier.
func ForUser(authenticated, subscribed bool) Tier {
	switch {
	case authenticated && subscribed:
		return TierPro
	case authenticated:
		return TierFree
	default:
		return TierAnonymous
	}
}

// Remaining returns how many more todos the tier allows given the current
// count. Unlimited tiers always return Unlimited.
func Remaining(tier Tier, used int) int {
	limit := Limit(tier)
	if limit == Unlimited {
		return Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// CanAdd reports whether one more todo fits within the tier limit.
func CanAdd(tier Tier, used int) bool {
	limit := Limit(tier)
	return limit == Unlimited || used < limit
}

// LimitMessage is the user-facing quota text shown under the todo input.
func LimitMessage(tier Tier, used int) string {
	if tier == TierPro {
		return "You have unlimited todos as a PRO user."
	}

	remaining := Remaining(tier, used)
	plural := "s"
	if remaining == 1 {
		plural = ""
	}

	kind := "an unregistered"
	if tier == TierFree {
		kind = "a free"
	}
	return fmt.Sprintf("You can create %d more todo%s as %s user.", remaining, plural, kind)
}
