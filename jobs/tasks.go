// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeOverdueScan reclassifies past-due recorded payments.
	TaskTypeOverdueScan = "billing:overdue_scan"
	// TaskTypeInvoiceIssue emits an NFS-e for a recorded payment.
	TaskTypeInvoiceIssue = "invoice:issue"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewOverdueScanTask constructs the payload-less scan task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// InvoiceIssuePayload carries everything needed to emit an NFS-e for a
// recorded payment and link the result back to it.
type InvoiceIssuePayload struct {
	PaymentID     string  `json:"payment_id"`
	CompanyID     string  `json:"company_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerDoc   string  `json:"customer_document"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
}

// NewInvoiceIssueTask constructs an invoice emission task.
func NewInvoiceIssueTask(payload InvoiceIssuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceIssue, data), nil
}
