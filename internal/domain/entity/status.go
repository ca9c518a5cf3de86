package entity

// Status ciclo de vida de productos y cuentas. Nunca se borran mientras estén referenciados.
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusDeactivated Status = "DEACTIVATED"
)

// Valid indica si el estado es uno de los conocidos.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeactivated
}
