package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/sweetshop-api/internal/domain"
)

func TestDecrement(t *testing.T) {
	q, err := Decrement(5, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), q)

	q, err = Decrement(0, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, int64(0), q, "sin stock la cantidad no cambia")

	_, err = Decrement(2, 3)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	_, err = Decrement(2, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIncrement(t *testing.T) {
	q, err := Increment(0, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), q)

	_, err = Increment(1, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Increment(math.MaxInt64, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se permite desbordar")
}

func TestValidQuantity(t *testing.T) {
	assert.True(t, ValidQuantity(0))
	assert.False(t, ValidQuantity(-1))
}
