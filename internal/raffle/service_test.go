package raffle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/internal/store"
	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

// recordingPublisher captures published events, optionally failing
// every publish to exercise the fallback path.
type recordingPublisher struct {
	events []events.PurchaseConfirmed
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.PurchaseConfirmed) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.Memory, *recordingPublisher) {
	t.Helper()
	mem := store.NewMemory()
	pub := &recordingPublisher{}
	return New(mem, mem, pub), mem, pub
}

func createRaffle(t *testing.T, svc *Service, total int, random bool) *models.Raffle {
	t.Helper()
	r, err := svc.CreateRaffle(context.Background(), CreateRaffleRequest{
		Title:         "Rifa Camiari",
		TotalTickets:  total,
		Price:         10,
		RandomTickets: random,
	})
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}
	return r
}

func buyerRequest(tickets ...string) PurchaseRequest {
	return PurchaseRequest{
		Name:             "Maria Perez",
		Email:            "maria@example.com",
		Phone:            "04141234567",
		PaymentMethod:    "pago-movil",
		PaymentReference: "12345678",
		Tickets:          tickets,
	}
}

// checkInvariants verifies the pool invariants that must hold after
// every operation: sold and reserved are disjoint, no duplicates in
// sold, and the counts partition the ticket space.
func checkInvariants(t *testing.T, r *models.Raffle) {
	t.Helper()

	sold := make(map[ticket.Number]int)
	for _, n := range r.SoldTickets {
		sold[n]++
		if sold[n] > 1 {
			t.Errorf("ticket %s appears %d times in soldTickets", n, sold[n])
		}
	}
	for _, n := range r.ReservedTickets {
		if n == ticket.Placeholder {
			continue
		}
		if sold[n] > 0 {
			t.Errorf("ticket %s is both sold and reserved", n)
		}
	}
	if len(r.SoldTickets)+len(r.ReservedTickets) > r.TotalTickets {
		t.Errorf("sold (%d) + reserved (%d) exceeds total (%d)",
			len(r.SoldTickets), len(r.ReservedTickets), r.TotalTickets)
	}
	if want := r.TotalTickets - len(r.SoldTickets) - len(r.ReservedTickets); r.AvailableNumbers != want {
		t.Errorf("availableNumbers = %d, want %d", r.AvailableNumbers, want)
	}
}

func getRaffle(t *testing.T, mem *store.Memory, id string) *models.Raffle {
	t.Helper()
	r, err := mem.GetRaffle(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRaffle: %v", err)
	}
	return r
}

func TestCreateRaffle_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRaffleRequest
	}{
		{"missing title", CreateRaffleRequest{TotalTickets: 100, Price: 5}},
		{"zero tickets", CreateRaffleRequest{Title: "x", Price: 5}},
		{"too many tickets", CreateRaffleRequest{Title: "x", TotalTickets: 10001, Price: 5}},
		{"free tickets", CreateRaffleRequest{Title: "x", TotalTickets: 100}},
		{"min above total", CreateRaffleRequest{Title: "x", TotalTickets: 10, Price: 5, MinTickets: 11}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.CreateRaffle(ctx, c.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestSubmitPurchase_Fixed(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	pending, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("7", "8"))
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}
	if pending.ID == "" {
		t.Error("pending purchase has no generated ID")
	}
	if len(pending.SelectedTickets) != 2 || pending.SelectedTickets[0] != "07" || pending.SelectedTickets[1] != "08" {
		t.Errorf("SelectedTickets = %v, want [07 08]", pending.SelectedTickets)
	}

	got := getRaffle(t, mem, r.ID)
	if len(got.ReservedTickets) != 2 {
		t.Errorf("ReservedTickets = %v, want two entries", got.ReservedTickets)
	}
	if len(got.PendingPurchases) != 1 {
		t.Fatalf("PendingPurchases len = %d, want 1", len(got.PendingPurchases))
	}
	if got.AvailableNumbers != 98 {
		t.Errorf("AvailableNumbers = %d, want 98", got.AvailableNumbers)
	}
	checkInvariants(t, got)
}

func TestSubmitPurchase_FixedUnavailable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	if _, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("07")); err != nil {
		t.Fatalf("first SubmitPurchase: %v", err)
	}

	// The same number, raw this time: canonicalization must make the
	// two forms collide.
	_, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("7"))
	if !errors.Is(err, ErrTicketUnavailable) {
		t.Errorf("err = %v, want ErrTicketUnavailable", err)
	}
}

func TestSubmitPurchase_Random(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 50, true)

	req := buyerRequest()
	req.TicketCount = 5
	pending, err := svc.SubmitPurchase(ctx, r.ID, req)
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}
	if len(pending.SelectedTickets) != 5 {
		t.Fatalf("SelectedTickets len = %d, want 5 placeholders", len(pending.SelectedTickets))
	}
	for _, n := range pending.SelectedTickets {
		if n != ticket.Placeholder {
			t.Errorf("expected placeholder, got %q", n)
		}
	}

	got := getRaffle(t, mem, r.ID)
	if len(got.ReservedTickets) != 5 {
		t.Errorf("ReservedTickets len = %d, want 5", len(got.ReservedTickets))
	}
	if got.AvailableNumbers != 45 {
		t.Errorf("AvailableNumbers = %d, want 45", got.AvailableNumbers)
	}
	checkInvariants(t, got)
}

func TestSubmitPurchase_RandomLimits(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateRaffle(ctx, CreateRaffleRequest{
		Title: "Minimo 3", TotalTickets: 10, Price: 2, RandomTickets: true, MinTickets: 3,
	})
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}

	req := buyerRequest()
	req.TicketCount = 2
	if _, err := svc.SubmitPurchase(ctx, r.ID, req); !errors.Is(err, ErrBelowMinimum) {
		t.Errorf("below minimum: err = %v, want ErrBelowMinimum", err)
	}

	req.TicketCount = 11
	if _, err := svc.SubmitPurchase(ctx, r.ID, req); !errors.Is(err, ErrInsufficientTickets) {
		t.Errorf("over capacity: err = %v, want ErrInsufficientTickets", err)
	}
}

func TestSubmitPurchase_FinishedRaffle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	if err := svc.FinishRaffle(ctx, r.ID); err != nil {
		t.Fatalf("FinishRaffle: %v", err)
	}
	if _, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("01")); !errors.Is(err, ErrRaffleNotActive) {
		t.Errorf("err = %v, want ErrRaffleNotActive", err)
	}
}

// TestApprove_Fixed is the fixed-raffle end-to-end scenario: approving
// a pending purchase of 07 and 08 moves exactly those tickets from
// reserved to sold and records one confirmed purchase.
func TestApprove_Fixed(t *testing.T) {
	svc, mem, pub := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	pending, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("07", "08"))
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}

	result, err := svc.Approve(ctx, r.ID, pending.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	got := getRaffle(t, mem, r.ID)
	checkInvariants(t, got)

	soldSet := make(map[ticket.Number]bool)
	for _, n := range got.SoldTickets {
		soldSet[n] = true
	}
	if !soldSet["07"] || !soldSet["08"] {
		t.Errorf("SoldTickets = %v, want 07 and 08", got.SoldTickets)
	}
	for _, n := range got.ReservedTickets {
		if n == "07" || n == "08" {
			t.Errorf("ticket %s still reserved after approval", n)
		}
	}
	if len(got.PendingPurchases) != 0 {
		t.Errorf("PendingPurchases = %v, want empty", got.PendingPurchases)
	}
	if len(got.Users) != 1 {
		t.Fatalf("Users len = %d, want 1", len(got.Users))
	}
	u := got.Users[0]
	if u.Status != models.PurchaseStatusConfirmed {
		t.Errorf("Status = %q, want confirmed", u.Status)
	}
	if len(u.SelectedTickets) != 2 {
		t.Errorf("confirmed tickets = %v, want [07 08]", u.SelectedTickets)
	}
	if u.PurchaseDate.IsZero() {
		t.Error("PurchaseDate not set")
	}

	if len(result.AssignedTickets) != 2 {
		t.Errorf("AssignedTickets = %v, want [07 08]", result.AssignedTickets)
	}
	if result.TemplateParams.ToEmail != "maria@example.com" {
		t.Errorf("TemplateParams.ToEmail = %q", result.TemplateParams.ToEmail)
	}
	if result.TemplateParams.TotalAmount != "20.00" {
		t.Errorf("TotalAmount = %q, want 20.00", result.TemplateParams.TotalAmount)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if len(pub.events[0].Tickets) != 2 {
		t.Errorf("event tickets = %v", pub.events[0].Tickets)
	}
}

// TestApprove_Random is the random-raffle end-to-end scenario: five
// placeholders resolve to five distinct real numbers within range.
func TestApprove_Random(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 50, true)

	req := buyerRequest()
	req.TicketCount = 5
	pending, err := svc.SubmitPurchase(ctx, r.ID, req)
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}

	result, err := svc.Approve(ctx, r.ID, pending.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if len(result.AssignedTickets) != 5 {
		t.Fatalf("AssignedTickets len = %d, want 5", len(result.AssignedTickets))
	}
	seen := make(map[ticket.Number]bool)
	for _, n := range result.AssignedTickets {
		if n == ticket.Placeholder {
			t.Error("placeholder leaked into assignment")
		}
		if seen[n] {
			t.Errorf("duplicate assigned ticket %s", n)
		}
		seen[n] = true
		if len(n) != 2 || n < "01" || n > "50" {
			t.Errorf("assigned ticket %q out of range 01..50", n)
		}
	}

	got := getRaffle(t, mem, r.ID)
	checkInvariants(t, got)
	if len(got.SoldTickets) != 5 {
		t.Errorf("SoldTickets len = %d, want 5", len(got.SoldTickets))
	}
	if len(got.ReservedTickets) != 0 {
		t.Errorf("ReservedTickets = %v, want empty", got.ReservedTickets)
	}
	if got.AvailableNumbers != 45 {
		t.Errorf("AvailableNumbers = %d, want 45", got.AvailableNumbers)
	}
}

// TestApprove_RandomFromPartialPool verifies allocation draws only from
// numbers not yet sold.
func TestApprove_RandomFromPartialPool(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 10, true)

	req := buyerRequest()
	req.TicketCount = 3
	pending, err := svc.SubmitPurchase(ctx, r.ID, req)
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}

	// Seed sold tickets behind the service's back so the draw pool
	// shrinks to 04..10.
	err = mem.UpdateRaffle(ctx, r.ID, func(r *models.Raffle) error {
		r.SoldTickets = []ticket.Number{"01", "02", "03"}
		r.RecomputeAvailable()
		return nil
	})
	if err != nil {
		t.Fatalf("seed sold tickets: %v", err)
	}

	result, err := svc.Approve(ctx, r.ID, pending.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	for _, n := range result.AssignedTickets {
		if n < "04" || n > "10" {
			t.Errorf("assigned %s, want only numbers from 04..10", n)
		}
	}
	checkInvariants(t, getRaffle(t, mem, r.ID))
}

// TestApprove_RandomInsufficient verifies the approval itself fails
// when the remaining pool cannot cover the reservation.
func TestApprove_RandomInsufficient(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 10, true)

	req := buyerRequest()
	req.TicketCount = 5
	pending, err := svc.SubmitPurchase(ctx, r.ID, req)
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}

	err = mem.UpdateRaffle(ctx, r.ID, func(r *models.Raffle) error {
		r.SoldTickets = []ticket.Number{"01", "02", "03", "04", "05", "06"}
		r.RecomputeAvailable()
		return nil
	})
	if err != nil {
		t.Fatalf("seed sold tickets: %v", err)
	}

	if _, err := svc.Approve(ctx, r.ID, pending.ID); !errors.Is(err, ErrInsufficientTickets) {
		t.Errorf("err = %v, want ErrInsufficientTickets", err)
	}

	// The aborted approval must leave the pending queue untouched.
	got := getRaffle(t, mem, r.ID)
	if len(got.PendingPurchases) != 1 {
		t.Errorf("PendingPurchases len = %d, want 1 after aborted approval", len(got.PendingPurchases))
	}
}

func TestApprove_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, "missing", "p1"); !errors.Is(err, ErrRaffleNotFound) {
		t.Errorf("missing raffle: err = %v, want ErrRaffleNotFound", err)
	}

	r := createRaffle(t, svc, 100, false)
	if _, err := svc.Approve(ctx, r.ID, "missing"); !errors.Is(err, ErrPurchaseNotFound) {
		t.Errorf("missing purchase: err = %v, want ErrPurchaseNotFound", err)
	}
}

func TestApprove_Twice(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	pending, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("11"))
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}
	if _, err := svc.Approve(ctx, r.ID, pending.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	if _, err := svc.Approve(ctx, r.ID, pending.ID); !errors.Is(err, ErrPurchaseNotFound) {
		t.Errorf("second Approve err = %v, want ErrPurchaseNotFound", err)
	}
}

// TestReject_ReleasesOwnTicketsOnly: rejecting a purchase holding 05
// and 06 removes exactly those reservations and no others.
func TestReject_ReleasesOwnTicketsOnly(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	other, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("01", "02"))
	if err != nil {
		t.Fatalf("SubmitPurchase other: %v", err)
	}
	victim, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("05", "06"))
	if err != nil {
		t.Fatalf("SubmitPurchase victim: %v", err)
	}

	if err := svc.Reject(ctx, r.ID, victim.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	got := getRaffle(t, mem, r.ID)
	checkInvariants(t, got)
	if len(got.ReservedTickets) != 2 {
		t.Fatalf("ReservedTickets = %v, want exactly the other purchase's two", got.ReservedTickets)
	}
	for _, n := range got.ReservedTickets {
		if n != "01" && n != "02" {
			t.Errorf("unexpected reservation %s survived", n)
		}
	}
	if got.PendingIndex(other.ID) < 0 {
		t.Error("other pending purchase disappeared")
	}
	if got.PendingIndex(victim.ID) >= 0 {
		t.Error("rejected purchase still pending")
	}
	if got.AvailableNumbers != 98 {
		t.Errorf("AvailableNumbers = %d, want 98", got.AvailableNumbers)
	}
}

func TestReject_RandomReleasesCount(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 50, true)

	first := buyerRequest()
	first.TicketCount = 3
	p1, err := svc.SubmitPurchase(ctx, r.ID, first)
	if err != nil {
		t.Fatalf("SubmitPurchase p1: %v", err)
	}
	second := buyerRequest()
	second.TicketCount = 4
	if _, err := svc.SubmitPurchase(ctx, r.ID, second); err != nil {
		t.Fatalf("SubmitPurchase p2: %v", err)
	}

	if err := svc.Reject(ctx, r.ID, p1.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	got := getRaffle(t, mem, r.ID)
	checkInvariants(t, got)
	if len(got.ReservedTickets) != 4 {
		t.Errorf("ReservedTickets len = %d, want 4", len(got.ReservedTickets))
	}
	if got.AvailableNumbers != 46 {
		t.Errorf("AvailableNumbers = %d, want 46", got.AvailableNumbers)
	}
}

// TestInvariants_AfterOperationSequence drives a mixed sequence of
// submissions, approvals, and rejections and re-checks the pool
// invariants after every step.
func TestInvariants_AfterOperationSequence(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 20, false)

	check := func() {
		t.Helper()
		checkInvariants(t, getRaffle(t, mem, r.ID))
	}

	a, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("1", "2", "3"))
	if err != nil {
		t.Fatal(err)
	}
	check()
	b, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("4", "5"))
	if err != nil {
		t.Fatal(err)
	}
	check()
	if _, err := svc.Approve(ctx, r.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	check()
	if err := svc.Reject(ctx, r.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	check()
	c, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("4", "5", "6"))
	if err != nil {
		t.Fatal(err)
	}
	check()
	if _, err := svc.Approve(ctx, r.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	check()

	got := getRaffle(t, mem, r.ID)
	if len(got.SoldTickets) != 6 {
		t.Errorf("SoldTickets len = %d, want 6", len(got.SoldTickets))
	}
	if len(got.Users) != 2 {
		t.Errorf("Users len = %d, want 2", len(got.Users))
	}
}

// TestValidateApproval exercises the abort branches directly against
// corrupted pool states that the normal flow never produces.
func TestValidateApproval(t *testing.T) {
	record := func(nums ...ticket.Number) models.Purchase {
		var p models.Purchase
		p.SelectedTickets = nums
		return p
	}

	cases := []struct {
		name      string
		sold      []ticket.Number
		assigned  []ticket.Number
		confirmed models.Purchase
		wantErr   error
	}{
		{
			name:      "valid",
			sold:      []ticket.Number{"07", "08"},
			assigned:  []ticket.Number{"07", "08"},
			confirmed: record("07", "08"),
		},
		{
			name:      "duplicate sold entry",
			sold:      []ticket.Number{"07", "07"},
			assigned:  []ticket.Number{"07"},
			confirmed: record("07"),
			wantErr:   ErrTicketAssignment,
		},
		{
			name:      "assigned ticket missing from sold",
			sold:      []ticket.Number{"08"},
			assigned:  []ticket.Number{"07"},
			confirmed: record("07"),
			wantErr:   ErrTicketAssignment,
		},
		{
			name:      "record shorter than assignment",
			sold:      []ticket.Number{"07", "08"},
			assigned:  []ticket.Number{"07", "08"},
			confirmed: record("07"),
			wantErr:   ErrUserRecordMismatch,
		},
		{
			name:      "record holds unassigned ticket",
			sold:      []ticket.Number{"07", "08", "09"},
			assigned:  []ticket.Number{"07", "08"},
			confirmed: record("07", "09"),
			wantErr:   ErrUserRecordMismatch,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &models.Raffle{TotalTickets: 100, SoldTickets: c.sold}
			err := validateApproval(r, c.confirmed, c.assigned)
			if c.wantErr == nil {
				if err != nil {
					t.Fatalf("validateApproval: %v", err)
				}
				return
			}
			if !errors.Is(err, c.wantErr) {
				t.Errorf("err = %v, want %v", err, c.wantErr)
			}
		})
	}
}

// TestApprove_PublishFallback verifies a failing outbox degrades to a
// direct ranking update without failing the approval.
func TestApprove_PublishFallback(t *testing.T) {
	mem := store.NewMemory()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := New(mem, mem, pub)
	ctx := context.Background()

	r := createRaffle(t, svc, 100, false)
	pending, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("09"))
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}
	if _, err := svc.Approve(ctx, r.ID, pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	top, err := mem.TopRankings(ctx, 10)
	if err != nil {
		t.Fatalf("TopRankings: %v", err)
	}
	if len(top) != 1 || top[0].TicketCount != 1 {
		t.Errorf("rankings = %+v, want one entry with one ticket", top)
	}
}

func TestApprove_TemplateParamsGrid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	r := createRaffle(t, svc, 100, false)

	pending, err := svc.SubmitPurchase(ctx, r.ID, buyerRequest("1", "2", "3", "4", "5", "6"))
	if err != nil {
		t.Fatalf("SubmitPurchase: %v", err)
	}
	result, err := svc.Approve(ctx, r.ID, pending.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Six tickets wrap onto a second row of the 5-per-row grid.
	if got := strings.Count(result.TemplateParams.TicketsHTML, "<tr>"); got != 2 {
		t.Errorf("grid rows = %d, want 2 (html: %s)", got, result.TemplateParams.TicketsHTML)
	}
	if result.TemplateParams.TicketCount != 6 {
		t.Errorf("TicketCount = %d, want 6", result.TemplateParams.TicketCount)
	}
}
