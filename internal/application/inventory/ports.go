package inventory

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// StockStore primitivas atómicas de stock. Cada llamada comprueba y modifica la cantidad
// en un solo paso indivisible; el caso de uso nunca hace leer-modificar-escribir.
type StockStore interface {
	DecrementIfAvailable(ctx context.Context, id string, n int64) (*entity.Sweet, error)
	Increment(ctx context.Context, id string, n int64) (*entity.Sweet, error)
}
