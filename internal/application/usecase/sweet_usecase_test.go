package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/memory"
)

// fakeCache caché en memoria con generaciones que cuenta invalidaciones.
type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	list        map[int64][]*entity.Sweet
	search      map[string][]*entity.Sweet
	invalidated int
	failGet     bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{list: map[int64][]*entity.Sweet{}, search: map[string][]*entity.Sweet{}}
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeCache) GetList(_ context.Context, gen int64) ([]*entity.Sweet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("redis caído")
	}
	return c.list[gen], nil
}

func (c *fakeCache) SetList(_ context.Context, gen int64, list []*entity.Sweet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list[gen] = list
	return nil
}

func (c *fakeCache) GetSearch(_ context.Context, gen int64, key string) ([]*entity.Sweet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("redis caído")
	}
	return c.search[fmt.Sprintf("%d:%s", gen, key)], nil
}

func (c *fakeCache) SetSearch(_ context.Context, gen int64, key string, list []*entity.Sweet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search[fmt.Sprintf("%d:%s", gen, key)] = list
	return nil
}

func (c *fakeCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return nil
}

func (c *fakeCache) current() []*entity.Sweet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list[c.gen]
}

// hookedRepo ejecuta beforeList antes de leer del almacén y onList después.
type hookedRepo struct {
	*memory.SweetRepo
	beforeList func()
	onList     func(ctx context.Context)
}

func (r *hookedRepo) List(ctx context.Context) ([]*entity.Sweet, error) {
	if r.beforeList != nil {
		r.beforeList()
	}
	list, err := r.SweetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if r.onList != nil {
		r.onList(ctx)
	}
	return list, nil
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func qty(v int64) *int64 { return &v }

func str(v string) *string { return &v }

func create(t *testing.T, uc *SweetUseCase, name, category string, p, q int64) *dto.SweetResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), dto.CreateSweetRequest{
		Name: name, Category: category, Price: price(p), Quantity: qty(q),
	})
	require.NoError(t, err)
	return out
}

func TestSweetUseCase_Create(t *testing.T) {
	uc := NewSweetUseCase(memory.NewSweetRepository(), nil, nil)
	ctx := context.Background()

	out := create(t, uc, "  Laddu ", "Indian", 50, 10)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Laddu", out.Name)
	assert.Equal(t, int64(10), out.Quantity)

	noQty, err := uc.Create(ctx, dto.CreateSweetRequest{Name: "Barfi", Category: "Indian", Price: price(40)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), noQty.Quantity, "la cantidad por defecto es 0")

	_, err = uc.Create(ctx, dto.CreateSweetRequest{Name: "Laddu", Category: "Indian", Price: price(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	invalid := []dto.CreateSweetRequest{
		{Name: "", Category: "Indian", Price: price(1)},
		{Name: "X", Category: "  ", Price: price(1)},
		{Name: "X", Category: "Indian"},
		{Name: "X", Category: "Indian", Price: price(-1)},
		{Name: "X", Category: "Indian", Price: price(1), Quantity: qty(-1)},
	}
	for _, in := range invalid {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestSweetUseCase_GetUpdateDelete(t *testing.T) {
	uc := NewSweetUseCase(memory.NewSweetRepository(), nil, nil)
	ctx := context.Background()
	s := create(t, uc, "Laddu", "Indian", 50, 10)

	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	upd, err := uc.Update(ctx, s.ID, dto.UpdateSweetRequest{Price: price(55)})
	require.NoError(t, err)
	assert.True(t, upd.Price.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, "Laddu", upd.Name)
	assert.Equal(t, int64(10), upd.Quantity)

	_, err = uc.Update(ctx, s.ID, dto.UpdateSweetRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, s.ID, dto.UpdateSweetRequest{Quantity: qty(-3)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, s.ID, dto.UpdateSweetRequest{Name: str(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, "no-existe", dto.UpdateSweetRequest{Price: price(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.Delete(ctx, s.ID))
	assert.ErrorIs(t, uc.Delete(ctx, s.ID), domain.ErrNotFound)
	_, err = uc.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweetUseCase_Search(t *testing.T) {
	uc := NewSweetUseCase(memory.NewSweetRepository(), nil, nil)
	ctx := context.Background()
	create(t, uc, "Laddu", "Indian", 50, 1)
	create(t, uc, "Gulab Jamun", "Indian", 100, 1)
	create(t, uc, "Brownie", "Western", 120, 1)

	out, err := uc.Search(ctx, repository.SweetFilter{Name: str("LAD")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Laddu", out[0].Name)

	out, err = uc.Search(ctx, repository.SweetFilter{Category: str("Indian"), MaxPrice: price(100)})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = uc.Search(ctx, repository.SweetFilter{Name: str("")})
	require.NoError(t, err)
	assert.Len(t, out, 3, "un filtro vacío equivale a listar")

	_, err = uc.Search(ctx, repository.SweetFilter{MinPrice: price(100), MaxPrice: price(50)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSweetUseCase_Cache(t *testing.T) {
	cache := newFakeCache()
	uc := NewSweetUseCase(memory.NewSweetRepository(), cache, nil)
	ctx := context.Background()

	s := create(t, uc, "Laddu", "Indian", 50, 1)
	assert.Equal(t, 1, cache.invalidated)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, cache.current(), 1, "el listado queda en caché")

	_, err = uc.Search(ctx, repository.SweetFilter{Name: str("Lad")})
	require.NoError(t, err)
	assert.Contains(t, cache.search, "1:lad|||")

	_, err = uc.Update(ctx, s.ID, dto.UpdateSweetRequest{Quantity: qty(7)})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)
	assert.Nil(t, cache.current())

	list, err = uc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), list[0].Quantity, "tras una escritura no se sirve el valor viejo")

	require.NoError(t, uc.Delete(ctx, s.ID))
	assert.Equal(t, 3, cache.invalidated)
}

func TestSweetUseCase_CacheCaidoNoFalla(t *testing.T) {
	cache := newFakeCache()
	cache.failGet = true
	uc := NewSweetUseCase(memory.NewSweetRepository(), cache, nil)
	create(t, uc, "Laddu", "Indian", 50, 1)

	list, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSweetUseCase_EscrituraDuranteCargaNoDejaListadoViejo(t *testing.T) {
	cache := newFakeCache()
	repo := &hookedRepo{SweetRepo: memory.NewSweetRepository()}
	uc := NewSweetUseCase(repo, cache, nil)
	ctx := context.Background()
	s := create(t, uc, "Laddu", "Indian", 50, 5)

	// Una compra entra entre la lectura del almacén y la escritura en caché.
	repo.onList = func(ctx context.Context) {
		repo.onList = nil
		_, err := repo.DecrementIfAvailable(ctx, s.ID, 1)
		require.NoError(t, err)
		require.NoError(t, cache.InvalidateAll(ctx))
	}
	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), list[0].Quantity, "la lectura en curso devuelve su instantánea")

	list, err = uc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), list[0].Quantity, "la siguiente lectura ve la compra")
}

func TestSweetUseCase_CargaCompartidaSobreviveCancelacion(t *testing.T) {
	cache := newFakeCache()
	repo := &hookedRepo{SweetRepo: memory.NewSweetRepository()}
	uc := NewSweetUseCase(repo, cache, nil)
	create(t, uc, "Laddu", "Indian", 50, 5)

	ctx, cancel := context.WithCancel(context.Background())
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.beforeList = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	first := make(chan error, 1)
	go func() {
		_, err := uc.List(ctx)
		first <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := uc.List(context.Background())
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	assert.NoError(t, <-first)
	assert.NoError(t, <-second, "cancelar la primera petición no hace fallar a las que esperan la misma carga")
}
