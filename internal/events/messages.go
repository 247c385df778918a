package events

import (
	"encoding/json"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// EventDeclarationSaved is the type of the message emitted after a save.
const EventDeclarationSaved = "declaration.saved"

// DeclarationSavedMessage announces that a declaration was appended to history.
// It carries the headline figures so consumers need not read the store.
type DeclarationSavedMessage struct {
	Event         string                   `json:"event"`
	DeclarationID int64                    `json:"declaration_id"`
	TaxpayerID    int64                    `json:"taxpayer_id"`
	Year          int                      `json:"year"`
	Status        domain.DeclarationStatus `json:"status"`
	ExpenseMethod domain.ExpenseMethod     `json:"expense_method"`
	CalculatedTax decimal.Decimal          `json:"calculated_tax"`
	NetTaxToPay   decimal.Decimal          `json:"net_tax_to_pay"`
	Timestamp     time.Time                `json:"timestamp"`
}

// NewDeclarationSavedMessage builds the message for a saved declaration
func NewDeclarationSavedMessage(d *domain.Declaration) *DeclarationSavedMessage {
	return &DeclarationSavedMessage{
		Event:         EventDeclarationSaved,
		DeclarationID: d.ID,
		TaxpayerID:    d.TaxpayerID,
		Year:          d.Year,
		Status:        d.Status,
		ExpenseMethod: d.ExpenseMethod,
		CalculatedTax: d.CalculatedTax,
		NetTaxToPay:   d.NetTaxToPay,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DeclarationSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DeclarationSavedMessageFromJSON creates a message from JSON bytes
func DeclarationSavedMessageFromJSON(data []byte) (*DeclarationSavedMessage, error) {
	var msg DeclarationSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
