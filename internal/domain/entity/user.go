package entity

import "time"

// User representa una cuenta de la tienda. Email es la identidad (normalizada) y no cambia tras el registro.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // hash unidireccional con sal por registro, nunca se expone
	IsAdmin      bool   // se fija al registrar según la lista de administradores
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public devuelve una copia sin el hash de contraseña.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
