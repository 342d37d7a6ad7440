package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a balance-holding cuenta: bank account, card, cash or wallet.
type Account struct {
	ID          int64           `json:"id_cuenta"`
	Description string          `json:"descripcion"`
	Balance     decimal.Decimal `json:"saldo"`
	BankID      int64           `json:"id_banco"`
	TypeID      int64           `json:"id_tipo_cuenta"`
	UserID      int64           `json:"id_usuario"`
	Color       string          `json:"color"`
	Active      bool            `json:"activa"`
	CreatedAt   time.Time       `json:"created_at"`
	// Joined fields
	BankName *string `json:"banco,omitempty"`
	TypeName *string `json:"tipo_cuenta,omitempty"`
}

// AccountInput is used for creating accounts. Balance is only honored on create.
type AccountInput struct {
	Description string           `json:"descripcion"`
	Balance     *decimal.Decimal `json:"saldo"`
	BankID      int64            `json:"id_banco"`
	TypeID      int64            `json:"id_tipo_cuenta"`
	UserID      int64            `json:"id_usuario"`
	Color       string           `json:"color"`
}

func (a *AccountInput) Validate() string {
	a.Description = strings.TrimSpace(a.Description)
	if a.Description == "" {
		return "descripcion is required"
	}
	if a.BankID <= 0 {
		return "id_banco is required"
	}
	if a.TypeID <= 0 {
		return "id_tipo_cuenta is required"
	}
	if a.UserID <= 0 {
		return "id_usuario is required"
	}
	if a.Balance != nil && a.Balance.IsNegative() {
		return "saldo must not be negative"
	}
	if a.Balance != nil && !ValidAmount(*a.Balance) {
		return "saldo must have at most two decimals and be below 1000000000000"
	}
	return ""
}

// OpeningBalance returns the balance to create the account with.
func (a *AccountInput) OpeningBalance() decimal.Decimal {
	if a.Balance == nil {
		return decimal.Zero
	}
	return *a.Balance
}

// AccountUpdate carries the editable account fields.
type AccountUpdate struct {
	Description string `json:"descripcion"`
	BankID      int64  `json:"id_banco"`
	TypeID      int64  `json:"id_tipo_cuenta"`
	Color       string `json:"color"`
}

func (a *AccountUpdate) Validate() string {
	a.Description = strings.TrimSpace(a.Description)
	if a.Description == "" {
		return "descripcion is required"
	}
	if a.BankID <= 0 {
		return "id_banco is required"
	}
	if a.TypeID <= 0 {
		return "id_tipo_cuenta is required"
	}
	return ""
}
