package db_test

import (
	"testing"

	"github.com/wayfarer/itinerary-orchestrator/internal/db"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/lists", "pgx5://u:p@localhost:5432/lists"},
		{"postgresql://u:p@localhost/lists?sslmode=disable", "pgx5://u:p@localhost/lists?sslmode=disable"},
		{"u:p@localhost/lists", "pgx5://u:p@localhost/lists"},
	}
	for _, tc := range tests {
		if got := db.MigrationURL(tc.in); got != tc.want {
			t.Fatalf("MigrationURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
