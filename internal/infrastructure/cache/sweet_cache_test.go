package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

const testTTL = 30 * time.Second

func TestSweetCache_GenerationInicial(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSweetCache(db, testTTL)

	mock.ExpectGet(keyGen).RedisNil()
	mock.ExpectGet(keyGen).SetVal("4")

	gen, err := c.Generation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen, "sin invalidaciones la generación es 0")
	gen, err = c.Generation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), gen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweetCache_GetListMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSweetCache(db, testTTL)

	mock.ExpectGet("sweets:list:0").RedisNil()

	list, err := c.GetList(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, list, "un miss devuelve nil sin error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweetCache_SetYGetList(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSweetCache(db, testTTL)

	list := []*entity.Sweet{{ID: "1", Name: "Laddu", Category: "Indian", Price: decimal.NewFromInt(50), Quantity: 3}}
	payload, err := json.Marshal(list)
	require.NoError(t, err)

	mock.ExpectSet("sweets:list:2", payload, testTTL).SetVal("OK")
	mock.ExpectGet("sweets:list:2").SetVal(string(payload))

	require.NoError(t, c.SetList(context.Background(), 2, list))
	got, err := c.GetList(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Laddu", got[0].Name)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(3), got[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweetCache_SearchPorGeneracion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSweetCache(db, testTTL)

	payload, err := json.Marshal([]*entity.Sweet{})
	require.NoError(t, err)
	mock.ExpectSet("sweets:search:1:lad|||", payload, testTTL).SetVal("OK")
	mock.ExpectGet("sweets:search:2:lad|||").RedisNil()

	require.NoError(t, c.SetSearch(context.Background(), 1, "lad|||", nil))
	got, err := c.GetSearch(context.Background(), 2, "lad|||")
	require.NoError(t, err)
	assert.Nil(t, got, "una entrada de otra generación no se lee")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweetCache_InvalidateAll(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewSweetCache(db, testTTL)

	mock.ExpectIncr(keyGen).SetVal(3)

	require.NoError(t, c.InvalidateAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
