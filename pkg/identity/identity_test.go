package identity

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Comprador@Example.COM", "comprador@example.com"},
		{"trim whitespace", "  buyer@example.com  ", "buyer@example.com"},
		{"gmail plus alias", "buyer+rifa@gmail.com", "buyer@gmail.com"},
		{"gmail dots", "b.u.y.e.r@gmail.com", "buyer@gmail.com"},
		{"googlemail to gmail", "buyer@googlemail.com", "buyer@gmail.com"},
		{"non-gmail plus preserved", "buyer+tag@outlook.com", "buyer+tag@outlook.com"},
		{"no at sign", "noemail", "noemail"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local venezuelan", "04141234567", "584141234567"},
		{"formatted local", "0414-123.45.67", "584141234567"},
		{"with country code", "584141234567", "584141234567"},
		{"with plus", "+584141234567", "584141234567"},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEmailHashEquivalence(t *testing.T) {
	a := EmailHash("B.u.y.e.r+rifa@gmail.com")
	b := EmailHash("buyer@gmail.com")
	if a != b {
		t.Errorf("equivalent gmail addresses hash differently: %s vs %s", a, b)
	}

	c := EmailHash("other@gmail.com")
	if a == c {
		t.Error("distinct addresses produced the same hash")
	}
}
