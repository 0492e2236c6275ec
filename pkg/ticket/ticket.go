// Package ticket defines the canonical representation of raffle ticket
// numbers. Numbers are stored and compared as fixed-width zero-padded
// strings; raw integers exist only inside this package, so call sites
// never mix padded and unpadded forms.
package ticket

import (
	"fmt"
	"strconv"
)

// Number is a canonical ticket identifier: a zero-padded decimal string
// whose width is determined by the raffle size (see Width).
type Number string

// Placeholder marks a reserved slot that has no assigned number yet.
// Random raffles reserve a count of tickets, not identities; each
// reserved slot is a Placeholder until approval draws real numbers.
const Placeholder Number = ""

// Width returns the zero-padding width for a raffle with the given
// total ticket count: 2 digits up to 100 tickets, 3 up to 1000,
// 4 up to 10000, and no padding beyond that.
func Width(totalTickets int) int {
	switch {
	case totalTickets <= 100:
		return 2
	case totalTickets <= 1000:
		return 3
	case totalTickets <= 10000:
		return 4
	default:
		return 0
	}
}

// Format renders a raw ticket number in canonical padded form.
func Format(n, totalTickets int) Number {
	w := Width(totalTickets)
	if w == 0 {
		return Number(strconv.Itoa(n))
	}
	return Number(fmt.Sprintf("%0*d", w, n))
}

// Normalize parses s (padded or raw) and returns its canonical form.
// It rejects values that are not integers in [1, totalTickets].
func Normalize(s string, totalTickets int) (Number, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("invalid ticket number %q", s)
	}
	if n < 1 || n > totalTickets {
		return "", fmt.Errorf("ticket number %d out of range [1, %d]", n, totalTickets)
	}
	return Format(n, totalTickets), nil
}

// All returns every ticket number of a raffle, 1 through totalTickets,
// in canonical form and ascending order.
func All(totalTickets int) []Number {
	nums := make([]Number, 0, totalTickets)
	for n := 1; n <= totalTickets; n++ {
		nums = append(nums, Format(n, totalTickets))
	}
	return nums
}
