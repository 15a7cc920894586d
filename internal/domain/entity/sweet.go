package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sweet representa un dulce del inventario. Name es único; Quantity nunca es negativa.
type Sweet struct {
	ID        string
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
