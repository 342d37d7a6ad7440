package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the tipo_transaccion of a transfer.
type Kind string

const (
	KindTransfer Kind = "transfer" // between two of the user's accounts
	KindPayment  Kind = "payment"  // to a third party, debits the source
	KindReceive  Kind = "receive"  // from a third party, credits the destination
)

// StatusCompleted is the only estado the writer produces.
const StatusCompleted = "completed"

// Debits reports whether the kind takes money out of a source account.
func (k Kind) Debits() bool {
	return k == KindTransfer || k == KindPayment
}

// Transfer is an immutable transferencia row.
type Transfer struct {
	ID                   int64           `json:"id_transferencia"`
	Amount               decimal.Decimal `json:"monto"`
	Date                 time.Time       `json:"fecha"`
	Concept              *string         `json:"concepto"`
	SourceAccountID      *int64          `json:"id_cuenta_origen"`
	DestinationAccountID *int64          `json:"id_cuenta_destino"`
	UserID               int64           `json:"id_usuario"`
	Kind                 Kind            `json:"tipo_transaccion"`
	Counterparty         *string         `json:"nombre_destinatario"`
	CategoryID           *int64          `json:"id_categoria"`
	Fee                  decimal.Decimal `json:"comision"`
	Status               string          `json:"estado"`
}

// TransferDetail is a history row enriched with account, bank and category labels.
type TransferDetail struct {
	Transfer
	SourceAccount      *string `json:"cuenta_origen"`
	SourceBank         *string `json:"banco_origen"`
	SourceType         *string `json:"tipo_cuenta_origen"`
	DestinationAccount *string `json:"cuenta_destino"`
	DestinationBank    *string `json:"banco_destino"`
	DestinationType    *string `json:"tipo_cuenta_destino"`
	Category           *string `json:"categoria"`
}

// TransferInput is the generic datosTransferencia payload.
type TransferInput struct {
	Amount               decimal.Decimal  `json:"monto"`
	Concept              *string          `json:"concepto"`
	SourceAccountID      *int64           `json:"id_cuenta_origen"`
	DestinationAccountID *int64           `json:"id_cuenta_destino"`
	UserID               int64            `json:"id_usuario"`
	Kind                 Kind             `json:"tipo_transaccion"`
	Counterparty         *string          `json:"nombre_destinatario"`
	CategoryID           *int64           `json:"id_categoria"`
	Fee                  *decimal.Decimal `json:"comision"`
}

// PaymentInput is the datosPago payload of a third-party payment.
type PaymentInput struct {
	Amount          decimal.Decimal  `json:"monto"`
	Concept         *string          `json:"concepto"`
	SourceAccountID *int64           `json:"id_cuenta_origen"`
	UserID          int64            `json:"id_usuario"`
	Recipient       *string          `json:"nombre_destinatario"`
	CategoryID      *int64           `json:"id_categoria"`
	Fee             *decimal.Decimal `json:"comision"`
}

// TransferInput reshapes the payment into the generic transfer payload.
func (p PaymentInput) TransferInput() TransferInput {
	return TransferInput{
		Amount:          p.Amount,
		Concept:         p.Concept,
		SourceAccountID: p.SourceAccountID,
		UserID:          p.UserID,
		Kind:            KindPayment,
		Counterparty:    p.Recipient,
		CategoryID:      p.CategoryID,
		Fee:             p.Fee,
	}
}

// ReceiveInput is the datosRecepcion payload of money received from a third party.
type ReceiveInput struct {
	Amount               decimal.Decimal  `json:"monto"`
	Concept              *string          `json:"concepto"`
	DestinationAccountID *int64           `json:"id_cuenta_destino"`
	UserID               int64            `json:"id_usuario"`
	Sender               *string          `json:"nombre_remitente"`
	Fee                  *decimal.Decimal `json:"comision"`
}

// TransferInput reshapes the receipt into the generic transfer payload.
func (r ReceiveInput) TransferInput() TransferInput {
	return TransferInput{
		Amount:               r.Amount,
		Concept:              r.Concept,
		DestinationAccountID: r.DestinationAccountID,
		UserID:               r.UserID,
		Kind:                 KindReceive,
		Counterparty:         r.Sender,
		Fee:                  r.Fee,
	}
}

// CategoryTotal is one slice of the spending-by-category breakdown.
type CategoryTotal struct {
	Category   string          `json:"categoria"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"porcentaje"`
	Count      int             `json:"cantidad"`
}

// Breakdown is the spending summary for a period.
type Breakdown struct {
	From       *time.Time      `json:"desde,omitempty"`
	To         *time.Time      `json:"hasta,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categorias"`
}
