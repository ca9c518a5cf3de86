// Package accounting expone el plan de cuentas y el libro diario.
package accounting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/accounting"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AccountInput datos de creación de una cuenta.
type AccountInput struct {
	Code     string
	Name     string
	Type     entity.AccountType
	ParentID *string
}

// AccountUpdate cambios permitidos. Code y Type son inmutables.
// ParentID nil deja el padre como está; DetachParent lo quita.
type AccountUpdate struct {
	Name         *string
	ParentID     *string
	DetachParent bool
}

// AccountTree mantiene la jerarquía del plan de cuentas.
type AccountTree struct {
	uow   repository.UnitOfWork
	reads repository.Repos
	log   zerolog.Logger
	now   func() time.Time
}

// NewAccountTree construye el servicio.
func NewAccountTree(uow repository.UnitOfWork, reads repository.Repos, log zerolog.Logger) *AccountTree {
	return &AccountTree{
		uow:   uow,
		reads: reads,
		log:   log.With().Str("component", "account_tree").Logger(),
		now:   time.Now,
	}
}

// Create registra una cuenta nueva, activa. El padre, si se indica, debe estar activo.
func (t *AccountTree) Create(ctx context.Context, in AccountInput) (*entity.Account, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if err := accounting.ValidateAccountCode(in.Code); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidAccountType
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre de cuenta vacío", domain.ErrInvalidInput)
	}

	now := t.now()
	account := &entity.Account{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Type:      in.Type,
		ParentID:  in.ParentID,
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := t.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := repos.Accounts.LockHierarchy(ctx); err != nil {
			return err
		}
		if existing, err := repos.Accounts.GetByCode(ctx, in.Code); err != nil {
			return fmt.Errorf("get account code=%s: %w", in.Code, err)
		} else if existing != nil {
			return domain.ErrDuplicateAccountCode
		}
		if in.ParentID != nil {
			if _, err := activeParent(ctx, repos.Accounts, *in.ParentID); err != nil {
				return err
			}
		}
		return repos.Accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	t.log.Info().Str("code", account.Code).Str("type", string(account.Type)).Msg("cuenta creada")
	return account, nil
}

// Update cambia nombre o padre. Un padre que sea la propia cuenta o uno de sus
// descendientes formaría un ciclo y se rechaza.
func (t *AccountTree) Update(ctx context.Context, id string, in AccountUpdate) (*entity.Account, error) {
	var account *entity.Account
	err := t.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		if account, err = lockForEdit(ctx, repos.Accounts, id); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: nombre de cuenta vacío", domain.ErrInvalidInput)
			}
			account.Name = name
		}
		switch {
		case in.DetachParent:
			account.ParentID = nil
		case in.ParentID != nil:
			if err := checkParent(ctx, repos.Accounts, id, *in.ParentID); err != nil {
				return err
			}
			parentID := *in.ParentID
			account.ParentID = &parentID
		}
		account.UpdatedAt = t.now()
		return repos.Accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// lockForEdit toma el lock de jerarquía y luego la fila de la cuenta. Todo cambio
// al árbol pasa por aquí, así las lecturas de descendientes y subcuentas no
// compiten con otra edición.
func lockForEdit(ctx context.Context, accounts repository.AccountRepository, id string) (*entity.Account, error) {
	if err := accounts.LockHierarchy(ctx); err != nil {
		return nil, err
	}
	account, err := accounts.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock account id=%s: %w", id, err)
	}
	if account == nil {
		return nil, &domain.AccountNotFoundError{Ref: id}
	}
	return account, nil
}

// activeParent exige que el padre exista y esté activo.
func activeParent(ctx context.Context, accounts repository.AccountRepository, parentID string) (*entity.Account, error) {
	parent, err := accounts.GetByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("get account id=%s: %w", parentID, err)
	}
	if parent == nil {
		return nil, &domain.AccountNotFoundError{Ref: parentID}
	}
	if !parent.IsActive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInactiveParentAccount, parent.Code)
	}
	return parent, nil
}

func checkParent(ctx context.Context, accounts repository.AccountRepository, id, parentID string) error {
	if parentID == id {
		return domain.ErrCyclicAccountHierarchy
	}
	if _, err := activeParent(ctx, accounts, parentID); err != nil {
		return err
	}
	descendants, err := accounts.GetDescendants(ctx, id)
	if err != nil {
		return fmt.Errorf("descendants account=%s: %w", id, err)
	}
	for _, d := range descendants {
		if d.ID == parentID {
			return domain.ErrCyclicAccountHierarchy
		}
	}
	return nil
}

// Deactivate desactiva la cuenta si no tiene subcuentas activas ni líneas contables.
func (t *AccountTree) Deactivate(ctx context.Context, id string) (*entity.Account, error) {
	var account *entity.Account
	err := t.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		if account, err = lockForEdit(ctx, repos.Accounts, id); err != nil {
			return err
		}
		children, err := repos.Accounts.ListChildren(ctx, id)
		if err != nil {
			return fmt.Errorf("children account=%s: %w", id, err)
		}
		activeChildren := false
		for _, c := range children {
			if c.IsActive() {
				activeChildren = true
				break
			}
		}
		hasLines, err := repos.Accounts.HasJournalLines(ctx, id)
		if err != nil {
			return fmt.Errorf("lines account=%s: %w", id, err)
		}
		if err := account.Deactivate(activeChildren, hasLines, t.now()); err != nil {
			return err
		}
		return repos.Accounts.Update(ctx, account)
	})
	if err != nil {
		t.log.Warn().Err(err).Str("account_id", id).Msg("desactivación rechazada")
		return nil, err
	}
	return account, nil
}

// Activate reactiva una cuenta desactivada. Su padre, si tiene, debe estar activo.
func (t *AccountTree) Activate(ctx context.Context, id string) (*entity.Account, error) {
	var account *entity.Account
	err := t.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		if account, err = lockForEdit(ctx, repos.Accounts, id); err != nil {
			return err
		}
		if account.ParentID != nil {
			if _, err := activeParent(ctx, repos.Accounts, *account.ParentID); err != nil {
				return err
			}
		}
		if err := account.Activate(t.now()); err != nil {
			return err
		}
		return repos.Accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Get devuelve la cuenta por ID.
func (t *AccountTree) Get(ctx context.Context, id string) (*entity.Account, error) {
	a, err := t.reads.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account id=%s: %w", id, err)
	}
	if a == nil {
		return nil, &domain.AccountNotFoundError{Ref: id}
	}
	return a, nil
}

// GetByCode devuelve la cuenta por código.
func (t *AccountTree) GetByCode(ctx context.Context, code string) (*entity.Account, error) {
	a, err := t.reads.Accounts.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get account code=%s: %w", code, err)
	}
	if a == nil {
		return nil, &domain.AccountNotFoundError{Ref: code}
	}
	return a, nil
}

func (t *AccountTree) List(ctx context.Context) ([]*entity.Account, error) {
	return t.reads.Accounts.List(ctx)
}

// GetDescendants devuelve el subárbol completo bajo la cuenta.
func (t *AccountTree) GetDescendants(ctx context.Context, id string) ([]*entity.Account, error) {
	if _, err := t.Get(ctx, id); err != nil {
		return nil, err
	}
	return t.reads.Accounts.GetDescendants(ctx, id)
}
