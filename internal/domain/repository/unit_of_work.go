package repository

import "context"

// Repos agrupa los repositorios atados a una misma unidad de trabajo (pool o tx).
type Repos struct {
	Products  ProductRepository
	Movements InventoryMovementRepository
	Accounts  AccountRepository
	Journal   JournalRepository
}

// UnitOfWork ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Commit si fn retorna nil; Rollback completo ante cualquier error.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
