package invite

import (
	"strings"
	"testing"

	"github.com/cryptocross/cryptocross/internal/user"
)

func TestParseCSV(t *testing.T) {
	in := strings.NewReader(
		"name,email,role\n" +
			"Alice,alice@x.com,educator\n" +
			"Bob,bob@x.com,learner\n" +
			",skipped@x.com,learner\n" +
			"Carol,carol@x.com,superuser\n" +
			"Dave,,\n")
	entries, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("want 4 entries, got %d", len(entries))
	}
	if entries[0].Role != user.RoleEducator {
		t.Fatalf("got %+v", entries[0])
	}
	if entries[2].Role != user.RoleLearner {
		t.Fatalf("unknown role must fall back to learner: %+v", entries[2])
	}
	if entries[3].Name != "Dave" || entries[3].Email != "" {
		t.Fatalf("got %+v", entries[3])
	}
}

func TestParseCSVRequiresNameColumn(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("email,role\na@x.com,learner\n")); err == nil {
		t.Fatalf("missing name column must fail")
	}
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	entries, err := ParseCSV(strings.NewReader("Role, Email ,Name\neducator,a@x.com,Alice\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Alice" || entries[0].Role != user.RoleEducator {
		t.Fatalf("got %+v", entries)
	}
}
