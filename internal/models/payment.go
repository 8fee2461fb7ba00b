package models

import "time"

// Payment is an outgoing accounting entry. Receipt is its incoming twin;
// the two differ only in the counterparty field (paid_to vs paid_from).
// Submitted records (docstatus=1) are immutable.
type Payment struct {
	Name                   string    `json:"name"`
	Date                   time.Time `json:"date"`
	AmountAED              float64   `json:"amountaed"`
	BillNumber             string    `json:"bill_number"`
	PaidTo                 string    `json:"paid_to"`
	CustomPurposeOfPayment string    `json:"custom_purpose_of_payment"`
	CustomModeOfPayment    string    `json:"custom_mode_of_payment"`
	BankName               string    `json:"bank_name,omitempty"`
	CardNumber             string    `json:"card_number,omitempty"`
	CustomAttachments      []string  `json:"custom_attachments,omitempty"`
	DocStatus              int       `json:"docstatus"`
	CreatedBy              string    `json:"created_by,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type CreatePaymentRequest struct {
	Date                   string   `json:"date"`
	AmountAED              float64  `json:"amountaed"`
	BillNumber             string   `json:"bill_number"`
	PaidTo                 string   `json:"paid_to"`
	CustomPurposeOfPayment string   `json:"custom_purpose_of_payment"`
	CustomModeOfPayment    string   `json:"custom_mode_of_payment"`
	BankName               string   `json:"bank_name"`
	CardNumber             string   `json:"card_number"`
	CustomAttachments      []string `json:"custom_attachments"`
}
