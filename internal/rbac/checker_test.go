package rbac

import "testing"

func TestCheckerPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"learner", "quiz:view", true},
		{"learner", "quiz:create", false},
		{"learner", "session:join", true},
		{"learner", "session:create", false},
		{"educator", "quiz:create", true},
		{"educator", "session:end", true}, // session:* wildcard
		{"educator", "users:list", false},
		{"moderator", "moderation:decide", true},
		{"moderator", "quiz:delete", false},
		{"admin", "anything:at:all", true},
		{"", "quiz:view", false},
		{"ghost", "quiz:view", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Fatalf("Has(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestCheckerAnyAll(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("learner", "quiz:create", "quiz:view") {
		t.Fatalf("Any must pass on one match")
	}
	if c.All("learner", "quiz:view", "quiz:create") {
		t.Fatalf("All must fail on one miss")
	}
}
