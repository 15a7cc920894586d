package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

const (
	keyGen    = "sweets:gen"
	keyList   = "sweets:list:"
	keySearch = "sweets:search:"
)

// SweetCache cachea en Redis el listado y las búsquedas de dulces.
// Cualquier escritura sobre el inventario debe llamar a InvalidateAll.
type SweetCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewSweetCache construye la caché sobre un cliente Redis.
func NewSweetCache(rdb redis.Cmdable, ttl time.Duration) *SweetCache {
	return &SweetCache{rdb: rdb, ttl: ttl}
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func listKey(gen int64) string {
	return keyList + strconv.FormatInt(gen, 10)
}

func searchKey(gen int64, key string) string {
	return keySearch + strconv.FormatInt(gen, 10) + ":" + key
}

// Generation devuelve la generación vigente; 0 si nunca se invalidó.
func (c *SweetCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetList devuelve el listado cacheado en la generación gen, o nil.
func (c *SweetCache) GetList(ctx context.Context, gen int64) ([]*entity.Sweet, error) {
	return c.get(ctx, listKey(gen))
}

// SetList guarda el listado bajo la generación gen.
func (c *SweetCache) SetList(ctx context.Context, gen int64, list []*entity.Sweet) error {
	return c.set(ctx, listKey(gen), list)
}

// GetSearch devuelve el resultado cacheado para la clave de búsqueda, o nil.
func (c *SweetCache) GetSearch(ctx context.Context, gen int64, key string) ([]*entity.Sweet, error) {
	return c.get(ctx, searchKey(gen, key))
}

// SetSearch guarda el resultado de una búsqueda.
func (c *SweetCache) SetSearch(ctx context.Context, gen int64, key string, list []*entity.Sweet) error {
	return c.set(ctx, searchKey(gen, key), list)
}

// InvalidateAll avanza la generación. Las entradas viejas expiran por TTL.
func (c *SweetCache) InvalidateAll(ctx context.Context) error {
	return c.rdb.Incr(ctx, keyGen).Err()
}

func (c *SweetCache) get(ctx context.Context, key string) ([]*entity.Sweet, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := make([]*entity.Sweet, 0)
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *SweetCache) set(ctx context.Context, key string, list []*entity.Sweet) error {
	if list == nil {
		list = []*entity.Sweet{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
