package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ita-digital/backoffice/internal/billing"
	"github.com/ita-digital/backoffice/internal/invoicing"
	jobmetrics "github.com/ita-digital/backoffice/internal/jobs"
)

// NewInvoiceIssueHandler returns the handler for TaskTypeInvoiceIssue. It
// emits the NFS-e through the gateway and stores the issued number on the
// recorded payment.
func NewInvoiceIssueHandler(logger *slog.Logger, billingSvc *billing.Service, invoicingSvc *invoicing.Service, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InvoiceIssuePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("invoice_issue")

		issued, err := invoicingSvc.IssueServiceInvoice(ctx, payload.CompanyID, invoicing.InvoiceRequest{
			ExternalID: payload.PaymentID,
			Customer: invoicing.InvoiceCustomer{
				Name:     payload.CustomerName,
				Email:    payload.CustomerEmail,
				Document: payload.CustomerDoc,
			},
			Description: payload.Description,
			UnitValue:   payload.Amount,
		})
		if err != nil {
			logger.Error("issue invoice",
				slog.String("payment_id", payload.PaymentID), slog.Any("error", err))
			return tracker.End(err)
		}

		if err := billingSvc.AttachInvoice(ctx, payload.PaymentID, issued.Number); err != nil {
			logger.Error("attach invoice",
				slog.String("payment_id", payload.PaymentID),
				slog.String("invoice_number", issued.Number), slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("invoice issued",
			slog.String("payment_id", payload.PaymentID),
			slog.String("invoice_number", issued.Number))
		return tracker.End(nil)
	}
}
