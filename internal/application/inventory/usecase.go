package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/application/ports"
	"github.com/jhoicas/sweetshop-api/internal/application/usecase"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
)

// StockUseCase compras y reposiciones. La cantidad nunca queda negativa: el almacén
// aplica la comprobación y el cambio de forma atómica.
type StockUseCase struct {
	store StockStore
	cache ports.CacheInvalidator // nil = sin caché
	log   *logger.Logger
}

// NewStockUseCase construye el caso de uso de stock.
func NewStockUseCase(store StockStore, cache ports.CacheInvalidator, log *logger.Logger) *StockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{store: store, cache: cache, log: log.Component("stock")}
}

// Purchase descuenta una unidad. ErrNotFound si el dulce no existe, ErrOutOfStock si la cantidad es 0.
func (uc *StockUseCase) Purchase(ctx context.Context, id, buyerID string) (*dto.SweetResponse, error) {
	sweet, err := uc.store.DecrementIfAvailable(ctx, id, 1)
	if err != nil {
		if errors.Is(err, domain.ErrOutOfStock) {
			uc.log.Info().Str("sweet_id", id).Str("buyer_id", buyerID).Msg("compra rechazada: sin stock")
		}
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().
		Str("sweet_id", id).
		Str("buyer_id", buyerID).
		Int64("quantity", sweet.Quantity).
		Msg("compra registrada")
	return usecase.ToSweetResponse(sweet), nil
}

// Restock suma amount (> 0) al stock. ErrInvalidInput si amount <= 0, ErrNotFound si no existe.
func (uc *StockUseCase) Restock(ctx context.Context, id string, amount int64) (*dto.SweetResponse, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sweet, err := uc.store.Increment(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().
		Str("sweet_id", id).
		Int64("amount", amount).
		Int64("quantity", sweet.Quantity).
		Msg("reposición registrada")
	return usecase.ToSweetResponse(sweet), nil
}

func (uc *StockUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateAll(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidación de caché fallida")
	}
}
