package dto

// ErrorResponse cuerpo de error HTTP: Code es estable y verificable por máquina, Message legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse acuse simple (p. ej. borrado).
type MessageResponse struct {
	Message string `json:"message"`
}
