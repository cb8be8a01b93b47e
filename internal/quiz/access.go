package quiz

// Viewer is the requesting identity as seen by the access gate.
type Viewer struct {
	ID   string
	Role string
}

// Pure predicates, evaluated fresh on every request. Status and privacy can
// change between calls, so results must never be cached.

// CanView reports whether v may read the quiz: admins always, owners always,
// everyone else only when the quiz is published and not private.
func CanView(q Quiz, v Viewer) bool {
	if v.Role == "admin" {
		return true
	}
	if isOwner(q, v) {
		return true
	}
	return q.Status == StatusPublished && q.Privacy != PrivacyPrivate
}

// CanMutate reports whether v may edit or delete the quiz. Published-public
// quizzes are still mutable only by their owner or an admin.
func CanMutate(q Quiz, v Viewer) bool {
	return v.Role == "admin" || isOwner(q, v)
}

// VisibleInListing applies the narrower listing rule: admins see everything,
// educators see their own plus published-public, everyone else only
// published-public.
func VisibleInListing(q Quiz, v Viewer) bool {
	if v.Role == "admin" {
		return true
	}
	if v.Role == "educator" && isOwner(q, v) {
		return true
	}
	return q.Status == StatusPublished && q.Privacy != PrivacyPrivate
}

func isOwner(q Quiz, v Viewer) bool {
	return v.ID != "" && q.Creator != nil && q.Creator.ID == v.ID
}
