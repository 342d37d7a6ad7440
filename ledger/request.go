package ledger

import (
	"strings"

	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
)

// Request is a validated transfer in canonical form. Only NewRequest builds
// one, so every Request carries exactly the account roles its kind uses.
type Request struct {
	Kind         models.Kind
	UserID       int64
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	Concept      *string
	Source       *int64
	Destination  *int64
	Counterparty *string
	CategoryID   *int64
}

// NewRequest validates in and returns its canonical form. Every missing or
// invalid field is reported in a single ValidationError.
func NewRequest(in models.TransferInput) (Request, error) {
	var bad []string

	if !in.Amount.IsPositive() || !models.ValidAmount(in.Amount) {
		bad = append(bad, "monto")
	}
	fee := decimal.Zero
	if in.Fee != nil {
		fee = *in.Fee
		if fee.IsNegative() || !models.ValidAmount(fee) {
			bad = append(bad, "comision")
		}
	}
	if in.UserID <= 0 {
		bad = append(bad, "id_usuario")
	}

	req := Request{
		Kind:    in.Kind,
		UserID:  in.UserID,
		Amount:  in.Amount,
		Fee:     fee,
		Concept: trimmed(in.Concept),
	}
	name := trimmed(in.Counterparty)

	switch in.Kind {
	case models.KindTransfer:
		if !validID(in.SourceAccountID) {
			bad = append(bad, "id_cuenta_origen")
		}
		if !validID(in.DestinationAccountID) {
			bad = append(bad, "id_cuenta_destino")
		}
		if validID(in.SourceAccountID) && validID(in.DestinationAccountID) &&
			*in.SourceAccountID == *in.DestinationAccountID {
			return Request{}, &ValidationError{
				Fields:  []string{"id_cuenta_origen", "id_cuenta_destino"},
				Message: "source and destination accounts must differ",
			}
		}
		req.Source, req.Destination = in.SourceAccountID, in.DestinationAccountID
		req.Counterparty = name
	case models.KindPayment:
		if !validID(in.SourceAccountID) {
			bad = append(bad, "id_cuenta_origen")
		}
		if name == nil {
			bad = append(bad, "nombre_destinatario")
		}
		if !validID(in.CategoryID) {
			bad = append(bad, "id_categoria")
		}
		req.Source, req.Counterparty, req.CategoryID = in.SourceAccountID, name, in.CategoryID
	case models.KindReceive:
		if !validID(in.DestinationAccountID) {
			bad = append(bad, "id_cuenta_destino")
		}
		if name == nil {
			bad = append(bad, "nombre_destinatario")
		}
		req.Destination, req.Counterparty = in.DestinationAccountID, name
	default:
		return Request{}, &ValidationError{
			Fields:  []string{"tipo_transaccion"},
			Message: "tipo_transaccion must be one of: transfer, payment, receive",
		}
	}

	if len(bad) > 0 {
		return Request{}, &ValidationError{Fields: bad, Message: "missing or invalid fields"}
	}
	return req, nil
}

// Debit is what leaves the source account: amount plus fee.
func (r Request) Debit() decimal.Decimal {
	return r.Amount.Add(r.Fee)
}

// AccountIDs returns the referenced account ids, source first.
func (r Request) AccountIDs() []int64 {
	var ids []int64
	if r.Source != nil {
		ids = append(ids, *r.Source)
	}
	if r.Destination != nil {
		ids = append(ids, *r.Destination)
	}
	return ids
}

// Transfer builds the row the writer inserts.
func (r Request) Transfer() models.Transfer {
	return models.Transfer{
		Amount:               r.Amount,
		Concept:              r.Concept,
		SourceAccountID:      r.Source,
		DestinationAccountID: r.Destination,
		UserID:               r.UserID,
		Kind:                 r.Kind,
		Counterparty:         r.Counterparty,
		CategoryID:           r.CategoryID,
		Fee:                  r.Fee,
		Status:               models.StatusCompleted,
	}
}

func validID(id *int64) bool {
	return id != nil && *id > 0
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
