// Package mailer builds and delivers the purchase-confirmation email.
// The raffle core only constructs TemplateParams; delivery happens in
// the notification worker via the EmailJS template API, so an email
// outage can never fail or roll back an approval.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

const emailJSSendURL = "https://api.emailjs.com/api/v1.0/email/send"

// ticketsPerRow is the column count of the ticket grid in the email.
const ticketsPerRow = 5

// TemplateParams is the flat parameter object the email template
// expects. Field names match the template variables configured in
// EmailJS, hence the snake_case JSON keys.
type TemplateParams struct {
	ToEmail          string `json:"to_email"`
	ToName           string `json:"to_name"`
	Subject          string `json:"subject"`
	RaffleTitle      string `json:"raffle_title"`
	TicketCount      int    `json:"ticket_count"`
	TicketType       string `json:"ticket_type"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
	TotalAmount      string `json:"total_amount"`
	TicketsHTML      string `json:"tickets_html"`
}

// Build renders the template parameters for a confirmed purchase.
func Build(ev events.PurchaseConfirmed) TemplateParams {
	ticketType := "Números seleccionados"
	if ev.RandomTickets {
		ticketType = "Números aleatorios"
	}

	return TemplateParams{
		ToEmail:          ev.BuyerEmail,
		ToName:           ev.BuyerName,
		Subject:          fmt.Sprintf("Confirmación de compra - %s", ev.RaffleTitle),
		RaffleTitle:      ev.RaffleTitle,
		TicketCount:      len(ev.Tickets),
		TicketType:       ticketType,
		PaymentMethod:    ev.PaymentMethod,
		PaymentReference: ev.PaymentReference,
		TotalAmount:      fmt.Sprintf("%.2f", float64(len(ev.Tickets))*ev.TicketPrice),
		TicketsHTML:      ticketsGrid(ev.Tickets),
	}
}

// ticketsGrid renders the assigned numbers as an HTML table with
// ticketsPerRow cells per row, matching the grid the email template
// embeds verbatim.
func ticketsGrid(nums []ticket.Number) string {
	var b strings.Builder
	b.WriteString("<table>")
	for i, n := range nums {
		if i%ticketsPerRow == 0 {
			if i > 0 {
				b.WriteString("</tr>")
			}
			b.WriteString("<tr>")
		}
		fmt.Fprintf(&b, "<td>%s</td>", n)
	}
	if len(nums) > 0 {
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// Sender delivers a confirmation email. Keeping it minimal means
// backends are trivially swappable without touching the worker.
type Sender interface {
	Send(ctx context.Context, params TemplateParams) error
}

// EmailJSSender delivers mail through the EmailJS REST API using stdlib
// net/http only, mirroring how the front end of the original
// application sends template mail.
type EmailJSSender struct {
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	sendURL    string
	httpClient *http.Client
}

// NewEmailJSSender creates an EmailJSSender ready to use. privateKey
// may be empty when strict mode is disabled on the EmailJS account.
func NewEmailJSSender(serviceID, templateID, publicKey, privateKey string) *EmailJSSender {
	return &EmailJSSender{
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		privateKey: privateKey,
		sendURL:    emailJSSendURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// emailJSRequest is the JSON body sent to the send endpoint.
type emailJSRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Send posts the template parameters to EmailJS. It returns a non-nil
// error if the HTTP request fails or EmailJS answers non-2xx; the
// caller (the event consumer) decides whether to retry or route to the
// DLQ.
func (s *EmailJSSender) Send(ctx context.Context, params TemplateParams) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     s.templateID,
		UserID:         s.publicKey,
		AccessToken:    s.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
