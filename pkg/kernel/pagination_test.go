package kernel

import "testing"

func TestNewPaginationOptionsClamps(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults for zero values", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"size over cap", 2, 500, 2, 100},
		{"valid passthrough", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPaginationOptions(tt.page, tt.size)
			if got.Page != tt.wantPage || got.PageSize != tt.wantPageSize {
				t.Errorf("NewPaginationOptions(%d, %d) = %+v, want page=%d size=%d",
					tt.page, tt.size, got, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
