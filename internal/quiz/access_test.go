package quiz

import "testing"

func TestAccessGate(t *testing.T) {
	owner := &Creator{ID: "u1", Role: "educator"}
	draft := Quiz{ID: "d", Status: StatusDraft, Privacy: PrivacyPrivate, Creator: owner}
	published := Quiz{ID: "p", Status: StatusPublished, Privacy: PrivacyPublic, Creator: owner}
	publishedPrivate := Quiz{ID: "pp", Status: StatusPublished, Privacy: PrivacyPrivate, Creator: owner}

	tests := []struct {
		name    string
		q       Quiz
		v       Viewer
		view    bool
		mutate  bool
		listing bool
	}{
		{"owner sees own draft", draft, Viewer{ID: "u1", Role: "educator"}, true, true, true},
		{"admin sees everything", draft, Viewer{ID: "x", Role: "admin"}, true, true, true},
		{"learner blocked from draft", draft, Viewer{ID: "u2", Role: "learner"}, false, false, false},
		{"learner sees published public", published, Viewer{ID: "u2", Role: "learner"}, true, false, true},
		{"learner blocked from published private", publishedPrivate, Viewer{ID: "u2", Role: "learner"}, false, false, false},
		{"other educator cannot mutate", published, Viewer{ID: "u3", Role: "educator"}, true, false, true},
		{"anonymous viewer never owns", Quiz{ID: "n", Status: StatusDraft, Creator: &Creator{ID: ""}}, Viewer{}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.q, tt.v); got != tt.view {
				t.Fatalf("CanView = %v, want %v", got, tt.view)
			}
			if got := CanMutate(tt.q, tt.v); got != tt.mutate {
				t.Fatalf("CanMutate = %v, want %v", got, tt.mutate)
			}
			if got := VisibleInListing(tt.q, tt.v); got != tt.listing {
				t.Fatalf("VisibleInListing = %v, want %v", got, tt.listing)
			}
		})
	}
}
