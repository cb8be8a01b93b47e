package invite

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/cryptocross/cryptocross/internal/user"
)

// ParseCSV reads provisioning rows from a name,email,role sheet. Unknown
// roles fall back to learner; rows without a name are skipped.
func ParseCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil, errors.New("missing column: name")
	}
	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	var entries []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := field(rec, "name")
		if name == "" {
			continue
		}
		entries = append(entries, Entry{
			Name:  name,
			Email: field(rec, "email"),
			Role:  user.NormalizeRole(field(rec, "role")),
		})
	}
	return entries, nil
}
