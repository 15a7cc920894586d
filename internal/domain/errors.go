package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateName     = errors.New("ya existe un dulce con ese nombre")
	ErrDuplicateIdentity = errors.New("el email ya está registrado")
	ErrInvalidCredential = errors.New("credenciales inválidas")
	ErrMissingCredential = errors.New("credencial requerida")
	ErrInvalidToken      = errors.New("token inválido o expirado")
	ErrPrincipalNotFound = errors.New("el usuario del token ya no existe")
	ErrForbidden         = errors.New("acceso denegado")
	ErrOutOfStock        = errors.New("sin stock")

	// ErrStoreUnavailable indica un fallo transitorio del almacenamiento (timeout, conexión).
	// El resultado de la operación es desconocido y el cliente puede reintentar.
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
)
