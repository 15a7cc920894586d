package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"golang.org/x/text/cases"
)

var _ repository.SweetRepository = (*SweetRepo)(nil)

type sweetRecord struct {
	mu      sync.Mutex
	sweet   entity.Sweet
	deleted bool
}

// SweetRepo implementación en memoria de SweetRepository con bloqueo por registro.
type SweetRepo struct {
	mu     sync.RWMutex
	byID   map[string]*sweetRecord
	byName map[string]string
	now    func() time.Time
}

// NewSweetRepository construye el repositorio vacío.
func NewSweetRepository() *SweetRepo {
	return &SweetRepo{
		byID:   make(map[string]*sweetRecord),
		byName: make(map[string]string),
		now:    time.Now,
	}
}

// Create persiste el dulce; ErrDuplicateName si el nombre existe.
func (r *SweetRepo) Create(ctx context.Context, sweet *entity.Sweet) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if !inventory.ValidQuantity(sweet.Quantity) {
		return domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[sweet.Name]; ok {
		return domain.ErrDuplicateName
	}
	r.byID[sweet.ID] = &sweetRecord{sweet: *sweet}
	r.byName[sweet.Name] = sweet.ID
	return nil
}

// record localiza el registro sin retener el mutex del mapa.
func (r *SweetRepo) record(id string) *sweetRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

func (r *SweetRepo) GetByID(ctx context.Context, id string) (*entity.Sweet, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	rec := r.record(id)
	if rec == nil {
		return nil, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, nil
	}
	s := rec.sweet
	return &s, nil
}

func (r *SweetRepo) List(ctx context.Context) ([]*entity.Sweet, error) {
	return r.Search(ctx, repository.SweetFilter{})
}

// Search filtra una instantánea de los registros; cada registro se copia bajo su propio lock.
func (r *SweetRepo) Search(ctx context.Context, filter repository.SweetFilter) ([]*entity.Sweet, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	recs := make([]*sweetRecord, 0, len(r.byID))
	for _, rec := range r.byID {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	out := make([]*entity.Sweet, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		s, deleted := rec.sweet, rec.deleted
		rec.mu.Unlock()
		if deleted || !matches(filter, &s) {
			continue
		}
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matches(f repository.SweetFilter, s *entity.Sweet) bool {
	if f.Name != nil {
		fold := cases.Fold()
		if !strings.Contains(fold.String(s.Name), fold.String(*f.Name)) {
			return false
		}
	}
	if f.Category != nil && s.Category != *f.Category {
		return false
	}
	if f.MinPrice != nil && s.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && s.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// Update aplica el patch bajo el mutex del mapa (por si hay renombrado) y el del registro.
func (r *SweetRepo) Update(ctx context.Context, id string, patch repository.SweetPatch) (*entity.Sweet, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if patch.Quantity != nil && !inventory.ValidQuantity(*patch.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byID[id]
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil && *patch.Name != rec.sweet.Name {
		if _, taken := r.byName[*patch.Name]; taken {
			return nil, domain.ErrDuplicateName
		}
		delete(r.byName, rec.sweet.Name)
		r.byName[*patch.Name] = id
		rec.sweet.Name = *patch.Name
	}
	if patch.Category != nil {
		rec.sweet.Category = *patch.Category
	}
	if patch.Price != nil {
		rec.sweet.Price = *patch.Price
	}
	if patch.Quantity != nil {
		rec.sweet.Quantity = *patch.Quantity
	}
	rec.sweet.UpdatedAt = r.now().UTC()
	s := rec.sweet
	return &s, nil
}

// Delete borra definitivamente el registro.
func (r *SweetRepo) Delete(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byID[id]
	if rec == nil {
		return domain.ErrNotFound
	}
	rec.mu.Lock()
	rec.deleted = true
	name := rec.sweet.Name
	rec.mu.Unlock()
	delete(r.byName, name)
	delete(r.byID, id)
	return nil
}

// DecrementIfAvailable comprueba y resta bajo el lock del registro.
func (r *SweetRepo) DecrementIfAvailable(ctx context.Context, id string, n int64) (*entity.Sweet, error) {
	return r.mutate(ctx, id, func(q int64) (int64, error) { return inventory.Decrement(q, n) })
}

// Increment suma bajo el lock del registro.
func (r *SweetRepo) Increment(ctx context.Context, id string, n int64) (*entity.Sweet, error) {
	return r.mutate(ctx, id, func(q int64) (int64, error) { return inventory.Increment(q, n) })
}

func (r *SweetRepo) mutate(ctx context.Context, id string, apply func(int64) (int64, error)) (*entity.Sweet, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	rec := r.record(id)
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, domain.ErrNotFound
	}
	q, err := apply(rec.sweet.Quantity)
	if err != nil {
		return nil, err
	}
	rec.sweet.Quantity = q
	rec.sweet.UpdatedAt = r.now().UTC()
	s := rec.sweet
	return &s, nil
}
