package ticket

import "testing"

func TestWidth(t *testing.T) {
	cases := []struct {
		total int
		want  int
	}{
		{10, 2},
		{100, 2},
		{101, 3},
		{999, 3},
		{1000, 3},
		{1001, 4},
		{9999, 4},
		{10000, 4},
		{10001, 0},
	}
	for _, c := range cases {
		if got := Width(c.total); got != c.want {
			t.Errorf("Width(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		n     int
		total int
		want  Number
	}{
		{7, 100, "07"},
		{7, 999, "007"},
		{7, 9999, "0007"},
		{7, 20000, "7"},
		{100, 100, "100"},
		{42, 50, "42"},
	}
	for _, c := range cases {
		if got := Format(c.n, c.total); got != c.want {
			t.Errorf("Format(%d, %d) = %q, want %q", c.n, c.total, got, c.want)
		}
	}
}

func TestFormatIdempotent(t *testing.T) {
	// Re-normalizing an already formatted number must yield the same string.
	for _, total := range []int{100, 999, 9999} {
		first := Format(7, total)
		second, err := Normalize(string(first), total)
		if err != nil {
			t.Fatalf("Normalize(%q, %d): %v", first, total, err)
		}
		if second != first {
			t.Errorf("Normalize(Format(7, %d)) = %q, want %q", total, second, first)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("7", 100)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "07" {
		t.Errorf("Normalize(\"7\", 100) = %q, want \"07\"", got)
	}

	if _, err := Normalize("0", 100); err == nil {
		t.Error("expected error for ticket 0")
	}
	if _, err := Normalize("101", 100); err == nil {
		t.Error("expected error for ticket beyond total")
	}
	if _, err := Normalize("abc", 100); err == nil {
		t.Error("expected error for non-numeric ticket")
	}
}

func TestAll(t *testing.T) {
	nums := All(5)
	if len(nums) != 5 {
		t.Fatalf("All(5) len = %d, want 5", len(nums))
	}
	if nums[0] != "01" || nums[4] != "05" {
		t.Errorf("All(5) = %v, want 01..05", nums)
	}
}
