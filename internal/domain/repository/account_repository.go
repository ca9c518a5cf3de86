package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// AccountRepository define el puerto del plan de cuentas.
// Los Get devuelven (nil, nil) cuando la cuenta no existe.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByCode(ctx context.Context, code string) (*entity.Account, error)
	// GetForUpdate lee la cuenta con bloqueo exclusivo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Account, error)
	// LockByIDs lee las cuentas con bloqueo compartido: varios asientos pueden usarlas
	// a la vez pero ninguna se desactiva mientras tanto.
	LockByIDs(ctx context.Context, ids []string) (map[string]*entity.Account, error)
	// LockHierarchy serializa los cambios de jerarquía (alta, padre, estado) de la transacción.
	LockHierarchy(ctx context.Context) error
	// Update persiste nombre, padre y estado. Código y tipo son inmutables.
	Update(ctx context.Context, account *entity.Account) error
	List(ctx context.Context) ([]*entity.Account, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.Account, error)
	// GetDescendants devuelve todo el subárbol (sin incluir la cuenta raíz).
	GetDescendants(ctx context.Context, id string) ([]*entity.Account, error)
	HasJournalLines(ctx context.Context, id string) (bool, error)
}
