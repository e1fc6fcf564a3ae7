package nanoid

import "testing"

func TestPrimaryKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := PrimaryKey()
		if !IsPrimaryKey(id) {
			t.Fatalf("generated id %q fails its own validation", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestIsPrimaryKey(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want bool
	}{
		{PrimaryKey(), true},
		{"", false},
		{"short", false},
		{"has spaces in it!", false},
		{"_under_scores_16", false},
	} {
		if got := IsPrimaryKey(tt.in); got != tt.want {
			t.Errorf("IsPrimaryKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMustLength(t *testing.T) {
	if got := len(Must()); got != PrimaryKeySize {
		t.Errorf("default length = %d", got)
	}
	if got := len(Must(6)); got != 6 {
		t.Errorf("length = %d, want 6", got)
	}
}
