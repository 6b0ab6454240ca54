package catalog_repo

import (
	"testing"
)

func TestParseOrderBy(t *testing.T) {
	cols := []string{"id", "code", "name", "price_per_kg"}

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "ascending", orderBy: "code", want: "code ASC"},
		{name: "descending", orderBy: "-price_per_kg", want: "price_per_kg DESC"},
		{name: "empty defaults to name", orderBy: "", want: "name ASC"},
		{name: "unknown column", orderBy: "evil; DROP TABLE", wantErr: true},
		{name: "unknown descending column", orderBy: "-nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrderBy(cols, tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("clause mismatch\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}
