package quota

import "testing"

func TestForUser(t *testing.T) {
	tests := []struct {
		authenticated bool
		subscribed    bool
		want          Tier
	}{
		{authenticated: false, subscribed: false, want: TierAnonymous},
		{authenticated: false, subscribed: true, want: TierAnonymous},
		{authenticated: true, subscribed: false, want: TierFree},
		{authenticated: true, subscribed: true, want: TierPro},
	}

	for _, tt := range tests {
		if got := ForUser(tt.authenticated, tt.subscribed); got != tt.want {
			t.Fatalf("ForUser(%v, %v) = %q, want %q", tt.authenticated, tt.subscribed, got, tt.want)
		}
	}
}

func TestLimits(t *testing.T) {
	if Limit(TierAnonymous) != 3 {
		t.Fatalf("anonymous limit = %d, want 3", Limit(TierAnonymous))
	}
	if Limit(TierFree) != 5 {
		t.Fatalf("free limit = %d, want 5", Limit(TierFree))
	}
	if Limit(TierPro) != Unlimited {
		t.Fatalf("expected pro tier to be unlimited")
	}
}

func TestRemainingAndCanAdd(t *testing.T) {
	tests := []struct {
		tier   Tier
		used   int
		remain int
		canAdd bool
	}{
		{tier: TierAnonymous, used: 0, remain: 3, canAdd: true},
		{tier: TierAnonymous, used: 2, remain: 1, canAdd: true},
		{tier: TierAnonymous, used: 3, remain: 0, canAdd: false},
		{tier: TierAnonymous, used: 7, remain: 0, canAdd: false},
		{tier: TierFree, used: 4, remain: 1, canAdd: true},
		{tier: TierFree, used: 5, remain: 0, canAdd: false},
		{tier: TierPro, used: 1000, remain: Unlimited, canAdd: true},
	}

	for _, tt := range tests {
		if got := Remaining(tt.tier, tt.used); got != tt.remain {
			t.Fatalf("Remaining(%q, %d) = %d, want %d", tt.tier, tt.used, got, tt.remain)
		}
		if got := CanAdd(tt.tier, tt.used); got != tt.canAdd {
			t.Fatalf("CanAdd(%q, %d) = %v, want %v", tt.tier, tt.used, got, tt.canAdd)
		}
	}
}

func TestLimitMessage(t *testing.T) {
	tests := []struct {
		tier Tier
		used int
		want string
	}{
		{tier: TierAnonymous, used: 0, want: "You can create 3 more todos as an unregistered user."},
		{tier: TierAnonymous, used: 2, want: "You can create 1 more todo as an unregistered user."},
		{tier: TierAnonymous, used: 3, want: "You can create 0 more todos as an unregistered user."},
		{tier: TierAnonymous, used: 9, want: "You can create 0 more todos as an unregistered user."},
		{tier: TierFree, used: 4, want: "You can create 1 more todo as a free user."},
		{tier: TierFree, used: 5, want: "You can create 0 more todos as a free user."},
		{tier: TierPro, used: 42, want: "You have unlimited todos as a PRO user."},
	}

	for _, tt := range tests {
		if got := LimitMessage(tt.tier, tt.used); got != tt.want {
			t.Fatalf("LimitMessage(%q, %d) = %q, want %q", tt.tier, tt.used, got, tt.want)
		}
	}
}
