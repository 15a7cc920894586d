package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/application/ports"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
)

// SweetUseCase casos de uso CRUD y búsqueda de dulces. La cantidad se mueve con
// compras y reposiciones (inventory.StockUseCase); aquí sólo se fija al crear o editar.
type SweetUseCase struct {
	repo  repository.SweetRepository
	cache ports.SweetCache // nil = sin caché
	sf    singleflight.Group
	log   *logger.Logger
	now   func() time.Time
}

// NewSweetUseCase construye el caso de uso. Si cache es nil, la caché queda desactivada.
func NewSweetUseCase(repo repository.SweetRepository, cache ports.SweetCache, log *logger.Logger) *SweetUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SweetUseCase{repo: repo, cache: cache, log: log.Component("sweets"), now: time.Now}
}

// Create crea un dulce. Name y Category son obligatorios; Price >= 0; Quantity >= 0 (por defecto 0).
func (uc *SweetUseCase) Create(ctx context.Context, in dto.CreateSweetRequest) (*dto.SweetResponse, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" || in.Price == nil || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var qty int64
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now().UTC()
	sweet := &entity.Sweet{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Price:     *in.Price,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, sweet); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return ToSweetResponse(sweet), nil
}

// GetByID obtiene un dulce; ErrNotFound si no existe.
func (uc *SweetUseCase) GetByID(ctx context.Context, id string) (*dto.SweetResponse, error) {
	sweet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sweet == nil {
		return nil, domain.ErrNotFound
	}
	return ToSweetResponse(sweet), nil
}

// List devuelve todo el inventario ordenado por nombre.
func (uc *SweetUseCase) List(ctx context.Context) ([]dto.SweetResponse, error) {
	list, err := uc.readThrough(ctx, "list", uc.repo.List, cacheSlot{
		get: func(ctx context.Context, gen int64) ([]*entity.Sweet, error) { return uc.cache.GetList(ctx, gen) },
		set: func(ctx context.Context, gen int64, l []*entity.Sweet) error { return uc.cache.SetList(ctx, gen, l) },
	})
	if err != nil {
		return nil, err
	}
	return toSweetResponses(list), nil
}

// Search filtra por nombre (subcadena sin mayúsculas), categoría exacta y rango de precio inclusivo.
// Un filtro vacío equivale a List.
func (uc *SweetUseCase) Search(ctx context.Context, filter repository.SweetFilter) ([]dto.SweetResponse, error) {
	filter = normalizeFilter(filter)
	if filter.IsEmpty() {
		return uc.List(ctx)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.ErrInvalidInput
	}
	key := searchKey(filter)
	load := func(ctx context.Context) ([]*entity.Sweet, error) { return uc.repo.Search(ctx, filter) }
	list, err := uc.readThrough(ctx, "search:"+key, load, cacheSlot{
		get: func(ctx context.Context, gen int64) ([]*entity.Sweet, error) { return uc.cache.GetSearch(ctx, gen, key) },
		set: func(ctx context.Context, gen int64, l []*entity.Sweet) error { return uc.cache.SetSearch(ctx, gen, key, l) },
	})
	if err != nil {
		return nil, err
	}
	return toSweetResponses(list), nil
}

// Update aplica una actualización parcial y devuelve el registro resultante.
func (uc *SweetUseCase) Update(ctx context.Context, id string, in dto.UpdateSweetRequest) (*dto.SweetResponse, error) {
	if in.IsEmpty() {
		return nil, domain.ErrInvalidInput
	}
	var patch repository.SweetPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		patch.Name = &name
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, domain.ErrInvalidInput
		}
		patch.Category = &category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		patch.Price = in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		patch.Quantity = in.Quantity
	}
	sweet, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return ToSweetResponse(sweet), nil
}

// Delete elimina definitivamente un dulce; ErrNotFound si no existe.
func (uc *SweetUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

type cacheSlot struct {
	get func(ctx context.Context, gen int64) ([]*entity.Sweet, error)
	set func(ctx context.Context, gen int64, list []*entity.Sweet) error
}

// readThrough lectura cache-aside. La generación se fija antes de cargar del almacén:
// si una escritura invalida durante la carga, el resultado queda en una generación que ya no se lee.
// Las lecturas concurrentes idénticas comparten una sola carga.
func (uc *SweetUseCase) readThrough(ctx context.Context, key string, load func(context.Context) ([]*entity.Sweet, error), slot cacheSlot) ([]*entity.Sweet, error) {
	if uc.cache == nil {
		return load(ctx)
	}
	gen, err := uc.cache.Generation(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("lectura de caché fallida")
		return load(ctx)
	}
	v, err, _ := uc.sf.Do(strconv.FormatInt(gen, 10)+":"+key, func() (interface{}, error) {
		// La carga compartida no se cancela con la petición que la inició.
		ctx := context.WithoutCancel(ctx)
		hit, err := slot.get(ctx, gen)
		if err != nil {
			uc.log.Warn().Err(err).Msg("lectura de caché fallida")
		} else if hit != nil {
			return hit, nil
		}
		list, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := slot.set(ctx, gen, list); err != nil {
			uc.log.Warn().Err(err).Msg("escritura de caché fallida")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*entity.Sweet), nil
}

func (uc *SweetUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateAll(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidación de caché fallida")
	}
}

// normalizeFilter descarta textos vacíos para que "?name=" no restrinja.
func normalizeFilter(f repository.SweetFilter) repository.SweetFilter {
	if f.Name != nil && strings.TrimSpace(*f.Name) == "" {
		f.Name = nil
	}
	if f.Category != nil && strings.TrimSpace(*f.Category) == "" {
		f.Category = nil
	}
	return f
}

func searchKey(f repository.SweetFilter) string {
	parts := make([]string, 4)
	if f.Name != nil {
		parts[0] = cases.Fold().String(*f.Name)
	}
	if f.Category != nil {
		parts[1] = *f.Category
	}
	if f.MinPrice != nil {
		parts[2] = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		parts[3] = f.MaxPrice.String()
	}
	return strings.Join(parts, "|")
}

// ToSweetResponse mapea la entidad a su salida HTTP.
func ToSweetResponse(s *entity.Sweet) *dto.SweetResponse {
	if s == nil {
		return nil
	}
	return &dto.SweetResponse{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Price:     s.Price,
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSweetResponses(list []*entity.Sweet) []dto.SweetResponse {
	out := make([]dto.SweetResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSweetResponse(s))
	}
	return out
}
