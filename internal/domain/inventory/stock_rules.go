package inventory

import (
	"math"

	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// Decrement aplica la regla de salida de stock: sólo descuenta si hay al menos n unidades.
// No modifica nada; el llamador debe aplicarlo bajo el bloqueo del registro.
func Decrement(current, n int64) (int64, error) {
	if n <= 0 {
		return current, domain.ErrInvalidInput
	}
	if current < n {
		return current, domain.ErrOutOfStock
	}
	return current - n, nil
}

// Increment aplica la regla de entrada de stock (n > 0, sin desbordar int64).
func Increment(current, n int64) (int64, error) {
	if n <= 0 {
		return current, domain.ErrInvalidInput
	}
	if current > math.MaxInt64-n {
		return current, domain.ErrInvalidInput
	}
	return current + n, nil
}

// ValidQuantity indica si una cantidad puede persistirse.
func ValidQuantity(q int64) bool {
	return q >= 0
}
