package user

import (
	"strconv"
	"strings"
	"unicode"
)

// NormalizeUsername derives a handle from a display name: lowercase, runs of
// non-alphanumerics collapsed to a single dash, leading/trailing dashes
// trimmed.
func NormalizeUsername(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// AllocateUsername picks the first free handle for the name given a snapshot
// of taken usernames: base, then base-2, base-3, and so on. Deterministic
// for a given snapshot.
func AllocateUsername(name string, taken []string) string {
	base := NormalizeUsername(name)
	if base == "" {
		base = "user"
	}
	used := make(map[string]bool, len(taken))
	for _, t := range taken {
		used[strings.ToLower(t)] = true
	}
	candidate := base
	for counter := 2; used[candidate]; counter++ {
		candidate = base + "-" + strconv.Itoa(counter)
	}
	return candidate
}
