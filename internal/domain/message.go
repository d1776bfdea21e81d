package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MessageTypeOverdue         = "overdue"
	MessageTypePaymentReminder = "payment_reminder"
	MessageTypeLoanCompleted   = "loan_completed"
	MessageTypeNewCustomer     = "new_customer"
	MessageTypeLoanApproved    = "loan_approved"
	MessageTypeLoanRejected    = "loan_rejected"
	MessageTypeSystemAlert     = "system_alert"
)

const (
	MessagePriorityLow    = "low"
	MessagePriorityMedium = "medium"
	MessagePriorityHigh   = "high"
	MessagePriorityUrgent = "urgent"
)

// Message is a human-readable notification persisted for the back office.
type Message struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Type           string     `json:"type" db:"type"`
	CustomerID     *uuid.UUID `json:"customer_id,omitempty" db:"customer_id"`
	LoanID         *uuid.UUID `json:"loan_id,omitempty" db:"loan_id"`
	Title          string     `json:"title" db:"title"`
	Body           string     `json:"body" db:"body"`
	Priority       string     `json:"priority" db:"priority"`
	ActionRequired bool       `json:"action_required" db:"action_required"`
	IsRead         bool       `json:"is_read" db:"is_read"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func newMessage(msgType, title, body, priority string) *Message {
	return &Message{
		ID:        uuid.New(),
		Type:      msgType,
		Title:     title,
		Body:      body,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
}

// NewOverdueMessage builds the notification emitted when a loan turns Overdue.
func NewOverdueMessage(loan *Loan) *Message {
	m := newMessage(
		MessageTypeOverdue,
		"Loan Overdue",
		fmt.Sprintf("Loan for %s (NRC: %s) is overdue. Amount due: K%s",
			loan.CustomerName, loan.CustomerNRC, loan.RemainingBalance.StringFixed(2)),
		MessagePriorityHigh,
	)
	m.CustomerID = &loan.CustomerID
	m.LoanID = &loan.ID
	m.ActionRequired = true
	return m
}

// NewPaymentReminderMessage builds the due-soon reminder for a loan.
func NewPaymentReminderMessage(loan *Loan) *Message {
	m := newMessage(
		MessageTypePaymentReminder,
		"Payment Reminder",
		fmt.Sprintf("Payment for %s (NRC: %s) is due on %s. Amount: K%s",
			loan.CustomerName, loan.CustomerNRC, loan.DueDate.Format("2006-01-02"),
			loan.RemainingBalance.StringFixed(2)),
		MessagePriorityMedium,
	)
	m.CustomerID = &loan.CustomerID
	m.LoanID = &loan.ID
	m.ActionRequired = true
	return m
}

// NewLoanCompletedMessage builds the notification emitted when a loan is fully paid.
func NewLoanCompletedMessage(loan *Loan) *Message {
	m := newMessage(
		MessageTypeLoanCompleted,
		"Loan Completed",
		fmt.Sprintf("Loan for %s has been fully paid and completed", loan.CustomerName),
		MessagePriorityLow,
	)
	m.CustomerID = &loan.CustomerID
	m.LoanID = &loan.ID
	return m
}

// NewCustomerMessage announces a freshly registered customer.
func NewCustomerMessage(customer *Customer) *Message {
	m := newMessage(
		MessageTypeNewCustomer,
		"New Customer",
		fmt.Sprintf("New customer registered: %s (NRC: %s)", customer.FullName, customer.NRCNumber),
		MessagePriorityLow,
	)
	m.CustomerID = &customer.ID
	return m
}

// NewMonthlySummaryMessage builds the monthly digest from the per-status aggregates.
func NewMonthlySummaryMessage(summaries []*StatusSummary) *Message {
	body := "Monthly loan summary:"
	var outstanding decimal.Decimal
	for _, s := range summaries {
		body += fmt.Sprintf(" %s: %d loans, K%s issued, K%s outstanding;",
			s.Status, s.Count, s.TotalAmount.StringFixed(2), s.TotalRemaining.StringFixed(2))
		outstanding = outstanding.Add(s.TotalRemaining)
	}
	body += fmt.Sprintf(" total outstanding K%s", outstanding.StringFixed(2))
	return newMessage(MessageTypeSystemAlert, "Monthly Loan Summary", body, MessagePriorityLow)
}
