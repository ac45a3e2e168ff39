package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 24, want: 24},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	if got := NormalizePage(0); got != 1 {
		t.Fatalf("NormalizePage(0) = %d, want 1", got)
	}
	if got := NormalizePage(-3); got != 1 {
		t.Fatalf("NormalizePage(-3) = %d, want 1", got)
	}
	if got := NormalizePage(7); got != 7 {
		t.Fatalf("NormalizePage(7) = %d, want 7", got)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Params{Page: -1, Limit: 500})
	if got.Page != 1 || got.Limit != MaxLimit {
		t.Fatalf("Normalize = %+v", got)
	}
}
