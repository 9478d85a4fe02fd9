// Package worker reacts to order events published by the storefront.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// ReceiptHandler emails the customer a receipt for every received order.
type ReceiptHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewReceiptHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		emailServiceURL: strings.TrimRight(emailServiceURL, "/"),
		httpClient:      client,
		logger:          logger,
	}
}

// Handle sends the receipt for one order.received event. A returned error
// leaves the message uncommitted so it is redelivered. Receipts the relay
// rejects outright are logged and dropped, since redelivery cannot fix them.
func (h *ReceiptHandler) Handle(ctx context.Context, event domain.OrderReceivedEvent) error {
	h.logger.Info("processing order received event", "order_id", event.OrderID)

	if event.CustomerEmail == "" {
		h.logger.Warn("order has no customer email, skipping receipt", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendEmail(ctx, receipt(event)); err != nil {
		var rerr *relayError
		if errors.As(err, &rerr) && rerr.permanent() {
			h.logger.Warn("email service rejected receipt, dropping",
				"error", err, "order_id", event.OrderID, "status", rerr.status)
			return nil
		}
		h.logger.Error("failed to send receipt", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send receipt for order %s: %w", event.OrderID, err)
	}

	h.logger.Info("receipt sent", "order_id", event.OrderID)
	return nil
}

// relayError is a non-200 reply from the email service.
type relayError struct {
	status int
}

func (e *relayError) Error() string {
	return fmt.Sprintf("email service returned status %d", e.status)
}

// permanent reports a 4xx reply other than a timeout or throttling: the
// request itself was refused.
func (e *relayError) permanent() bool {
	switch e.status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.status >= 400 && e.status < 500
}

type email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func receipt(event domain.OrderReceivedEvent) email {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for shopping at Smiley Store! We received order %s.\n\n", event.OrderID)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "%d x %s (%s) @ %s = %s\n",
			item.Quantity, item.Title, item.Size,
			item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2),
		)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", event.Total.StringFixed(2))

	return email{
		To:      event.CustomerEmail,
		Subject: "Order Received: " + event.OrderID,
		Body:    b.String(),
	}
}

func (h *ReceiptHandler) sendEmail(ctx context.Context, msg email) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &relayError{status: resp.StatusCode}
	}

	return nil
}
