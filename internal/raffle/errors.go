package raffle

import "errors"

// Operation errors. Approval and rejection share one convention: every
// failure is a typed error the HTTP layer translates into a
// {success:false, error} response; nothing panics or half-applies.
var (
	// ErrRaffleNotFound reports a raffle ID that resolves to no document.
	ErrRaffleNotFound = errors.New("raffle not found")

	// ErrPurchaseNotFound reports a purchase ID missing from the
	// raffle's pending queue.
	ErrPurchaseNotFound = errors.New("pending purchase not found")

	// ErrRaffleNotActive reports a purchase attempt against a finished
	// raffle.
	ErrRaffleNotActive = errors.New("raffle is not active")

	// ErrInvalidRequest reports missing or malformed request fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTicketUnavailable reports a requested ticket number that is
	// already sold or reserved.
	ErrTicketUnavailable = errors.New("ticket unavailable")

	// ErrBelowMinimum reports a random-raffle request below the
	// raffle's minimum ticket count.
	ErrBelowMinimum = errors.New("ticket count below raffle minimum")

	// ErrInsufficientTickets reports that the remaining pool cannot
	// satisfy the requested count.
	ErrInsufficientTickets = errors.New("not enough tickets available")

	// ErrTicketAssignment reports that an approval produced a duplicate
	// entry in the sold pool. The transaction is aborted.
	ErrTicketAssignment = errors.New("duplicate ticket assignment")

	// ErrUserRecordMismatch reports that the confirmed purchase record
	// disagrees with the assigned tickets. The transaction is aborted.
	ErrUserRecordMismatch = errors.New("confirmed record does not match assigned tickets")
)
