package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSweetRequest entrada para crear un dulce. Price es obligatorio; Quantity por defecto 0.
type CreateSweetRequest struct {
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	Category string           `json:"category" validate:"required"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Quantity *int64           `json:"quantity" validate:"omitempty,min=0"`
}

// UpdateSweetRequest actualización parcial: sólo se aplican los campos presentes.
type UpdateSweetRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int64           `json:"quantity"`
}

// IsEmpty indica si la petición no trae ningún campo.
func (r UpdateSweetRequest) IsEmpty() bool {
	return r.Name == nil && r.Category == nil && r.Price == nil && r.Quantity == nil
}

// RestockRequest cantidad a sumar al stock.
type RestockRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// SweetResponse salida de un dulce.
type SweetResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
