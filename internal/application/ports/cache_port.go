package ports

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// SweetCache caché de lectura para listados y búsquedas (implementada sobre Redis).
// Las entradas se guardan bajo una generación; InvalidateAll avanza la generación y
// las entradas anteriores dejan de leerse. Un miss devuelve (nil, nil).
type SweetCache interface {
	Generation(ctx context.Context) (int64, error)
	GetList(ctx context.Context, gen int64) ([]*entity.Sweet, error)
	SetList(ctx context.Context, gen int64, list []*entity.Sweet) error
	GetSearch(ctx context.Context, gen int64, key string) ([]*entity.Sweet, error)
	SetSearch(ctx context.Context, gen int64, key string, list []*entity.Sweet) error
	InvalidateAll(ctx context.Context) error
}

// CacheInvalidator lo mínimo que necesitan las escrituras sobre el inventario.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}
