package repository

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SweetFilter criterios opcionales de búsqueda. Un campo nil no restringe.
// Name: subcadena sin distinguir mayúsculas; Category: igualdad exacta; precios inclusivos.
type SweetFilter struct {
	Name     *string
	Category *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// IsEmpty indica si el filtro no impone ninguna restricción.
func (f SweetFilter) IsEmpty() bool {
	return f.Name == nil && f.Category == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// SweetPatch cambios parciales de un dulce; nil = sin cambio.
// Se aplica en un solo paso para no pisar la cantidad movida por compras concurrentes.
type SweetPatch struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Quantity *int64
}

// SweetRepository define el puerto de persistencia para dulces (DIP).
//
// DecrementIfAvailable e Increment son las únicas vías para mover la cantidad en
// compras y reposiciones: cada una es una operación atómica sobre un solo registro.
type SweetRepository interface {
	// Create devuelve domain.ErrDuplicateName si el nombre ya existe.
	Create(ctx context.Context, sweet *entity.Sweet) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sweet, error)
	List(ctx context.Context) ([]*entity.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]*entity.Sweet, error)
	// Update aplica el patch y devuelve el registro resultante; domain.ErrNotFound o domain.ErrDuplicateName.
	Update(ctx context.Context, id string, patch SweetPatch) (*entity.Sweet, error)
	// Delete devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error

	// DecrementIfAvailable resta n sólo si quantity >= n, en un único paso indivisible.
	// Devuelve domain.ErrNotFound o domain.ErrOutOfStock sin modificar el registro.
	DecrementIfAvailable(ctx context.Context, id string, n int64) (*entity.Sweet, error)
	// Increment suma n de forma atómica (sin lectura previa). domain.ErrNotFound si no existe.
	Increment(ctx context.Context, id string, n int64) (*entity.Sweet, error)
}
