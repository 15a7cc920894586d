package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// ctxErr traduce un contexto vencido o cancelado a ErrStoreUnavailable.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
