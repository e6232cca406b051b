package worker

// stock_alert_worker.go
// Consumes low-stock alert jobs and notifies the showroom admin by email.
// Delivery is best-effort: it never affects the sale transaction that
// produced the alert.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gotsutoki/car-management-website/internal/infra"

	"github.com/rs/zerolog/log"
)

// StockAlertWorker mails low-stock notifications to the admin address.
// SMTP calls go through a circuit breaker so a dead mail server fails fast
// instead of tying up the pool.
type StockAlertWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
	toEmail string
}

func NewStockAlertWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker, toEmail string) *StockAlertWorker {
	return &StockAlertWorker{mailer: mailer, breaker: breaker, toEmail: toEmail}
}

// Process sends one low-stock alert email.
func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload StockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_alert_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.toEmail == "" {
		log.Warn().Msg("stock_alert_worker: no alert email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s %s (%d left)", payload.Brand, payload.Model, payload.Stock)
	body := fmt.Sprintf(
		"Stock for %s %s (car %s) dropped to %d, below the threshold of %d.\nRestock or adjust the listing.",
		payload.Brand, payload.Model, payload.CarID, payload.Stock, payload.Threshold,
	)

	err := w.breaker.Execute(func() error {
		return w.mailer.SendAlert(w.toEmail, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("car_id", payload.CarID).Msg("stock_alert_worker: failed to send alert")
		return err
	}
	log.Info().Str("car_id", payload.CarID).Int("stock", payload.Stock).Msg("stock_alert_worker: alert sent")
	return nil
}
