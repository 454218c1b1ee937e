package dto

import "time"

// DateLayout formato de fecha en la API (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDate parsea una fecha de la API.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP: el par estable (code, message).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
