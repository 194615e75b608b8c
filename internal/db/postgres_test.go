package db

import "testing"

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/robot?sslmode=disable", "pgx5://u:p@localhost:5432/robot?sslmode=disable"},
		{"postgresql://localhost/robot", "pgx5://localhost/robot"},
		{"localhost/robot", "pgx5://localhost/robot"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := MigrationURL(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
