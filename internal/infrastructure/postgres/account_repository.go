package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, code, name, type, parent_id, status, created_at, updated_at`

// AccountRepo plan de cuentas sobre PostgreSQL.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, a.ID, a.Code, a.Name, a.Type, a.ParentID, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapUniqueViolation(err)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) getOne(ctx context.Context, label, where string, arg any) (*entity.Account, error) {
	var a entity.Account
	err := pgxscan.Get(ctx, r.q, &a, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	if err != nil {
		if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &a, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.getOne(ctx, "get account", "id = $1", id)
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*entity.Account, error) {
	return r.getOne(ctx, "get account by code", "code = $1", code)
}

// GetForUpdate bloquea la fila de la cuenta hasta el fin de la transacción.
func (r *AccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	return r.getOne(ctx, "lock account", "id = $1 FOR UPDATE", id)
}

// LockByIDs resuelve varias cuentas en una sola consulta con FOR SHARE, en orden de
// ID para que dos asientos sobre las mismas cuentas tomen los bloqueos igual.
func (r *AccountRepo) LockByIDs(ctx context.Context, ids []string) (map[string]*entity.Account, error) {
	out := make(map[string]*entity.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := lockAccountsQuery(ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var list []*entity.Account
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}

func lockAccountsQuery(ids []string) sq.SelectBuilder {
	return psql.Select("id", "code", "name", "type", "parent_id", "status", "created_at", "updated_at").
		From("accounts").
		Where(sq.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR SHARE")
}

// accountHierarchyLock clave del advisory lock de la jerarquía del plan de cuentas.
const accountHierarchyLock int64 = 0x61636374 // "acct"

// LockHierarchy toma un advisory lock de transacción. Dos cambios de padre cruzados
// no pueden leer descendientes a la vez y cerrar un ciclo entre los dos.
func (r *AccountRepo) LockHierarchy(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, accountHierarchyLock); err != nil {
		return fmt.Errorf("lock account hierarchy: %w", err)
	}
	return nil
}

func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	query := `UPDATE accounts SET name = $2, parent_id = $3, status = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, a.ID, a.Name, a.ParentID, a.Status, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update account=%s: %w", a.ID, domain.ErrAccountNotFound)
	}
	return nil
}

func (r *AccountRepo) selectAll(ctx context.Context, label, query string, args ...any) ([]*entity.Account, error) {
	var list []*entity.Account
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return list, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	return r.selectAll(ctx, "list accounts", `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
}

func (r *AccountRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.Account, error) {
	return r.selectAll(ctx, "list children", `SELECT `+accountColumns+` FROM accounts WHERE parent_id = $1 ORDER BY code`, parentID)
}

// GetDescendants recorre el subárbol con un CTE recursivo. UNION descarta repetidos
// y corta la recursión aunque existiera un ciclo.
func (r *AccountRepo) GetDescendants(ctx context.Context, id string) ([]*entity.Account, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT ` + accountColumns + ` FROM accounts WHERE parent_id = $1
			UNION
			SELECT a.id, a.code, a.name, a.type, a.parent_id, a.status, a.created_at, a.updated_at
			FROM accounts a JOIN tree t ON a.parent_id = t.id
		)
		SELECT ` + accountColumns + ` FROM tree WHERE id <> $1 ORDER BY code`
	return r.selectAll(ctx, "get descendants", query, id)
}

func (r *AccountRepo) HasJournalLines(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has journal lines: %w", err)
	}
	return exists, nil
}
