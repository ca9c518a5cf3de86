package dto

// Ventana de los listados paginados (productos, kardex, asientos).
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 500
)

// PageRequest ventana pedida por el cliente. Limit cero toma DefaultPageLimit.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize fija el límite por defecto y recorta lo que exceda MaxPageLimit.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse ventana efectivamente aplicada. Returned permite al cliente saber
// si debe pedir la siguiente página (Returned == Limit).
type PageResponse struct {
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

func NewPageResponse(p PageRequest, returned int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Returned: returned}
}

// ErrorResponse cuerpo de todo error HTTP. Code es estable (INSUFFICIENT_STOCK,
// UNBALANCED_ENTRY, ...); Message es el texto del error de dominio.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
