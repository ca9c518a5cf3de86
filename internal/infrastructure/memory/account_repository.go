package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo plan de cuentas en memoria.
type AccountRepo struct {
	v *view
}

func (r *AccountRepo) Create(_ context.Context, account *entity.Account) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.codes[account.Code]; ok {
			return domain.ErrDuplicateAccountCode
		}
		st.accounts[account.ID] = copyAccount(account)
		st.codes[account.Code] = account.ID
		return nil
	})
}

func (r *AccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	var out *entity.Account
	r.v.read(func(st *state) {
		if a, ok := st.accounts[id]; ok {
			out = copyAccount(a)
		}
	})
	return out, nil
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*entity.Account, error) {
	var id string
	r.v.read(func(st *state) { id = st.codes[code] })
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate, LockByIDs y LockHierarchy no bloquean nada propio: la unidad de
// trabajo ya tiene exclusión total sobre el almacén.
func (r *AccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *AccountRepo) LockByIDs(_ context.Context, ids []string) (map[string]*entity.Account, error) {
	out := make(map[string]*entity.Account, len(ids))
	r.v.read(func(st *state) {
		for _, id := range ids {
			if a, ok := st.accounts[id]; ok {
				out[id] = copyAccount(a)
			}
		}
	})
	return out, nil
}

func (r *AccountRepo) LockHierarchy(context.Context) error { return nil }

func (r *AccountRepo) Update(_ context.Context, account *entity.Account) error {
	return r.v.write(func(st *state) error {
		a, ok := st.accounts[account.ID]
		if !ok {
			return fmt.Errorf("update account=%s: %w", account.ID, domain.ErrAccountNotFound)
		}
		a.Name = account.Name
		a.ParentID = copyAccount(account).ParentID
		a.Status = account.Status
		a.UpdatedAt = account.UpdatedAt
		return nil
	})
}

func (r *AccountRepo) List(_ context.Context) ([]*entity.Account, error) {
	var list []*entity.Account
	r.v.read(func(st *state) {
		for _, a := range st.accounts {
			list = append(list, copyAccount(a))
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *AccountRepo) ListChildren(_ context.Context, parentID string) ([]*entity.Account, error) {
	var list []*entity.Account
	r.v.read(func(st *state) {
		for _, a := range st.accounts {
			if a.ParentID != nil && *a.ParentID == parentID {
				list = append(list, copyAccount(a))
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// GetDescendants recorre el subárbol en anchura. El conjunto de visitados corta
// cualquier ciclo que un dato corrupto pudiera introducir.
func (r *AccountRepo) GetDescendants(_ context.Context, id string) ([]*entity.Account, error) {
	var list []*entity.Account
	r.v.read(func(st *state) {
		children := make(map[string][]*entity.Account)
		for _, a := range st.accounts {
			if a.ParentID != nil {
				children[*a.ParentID] = append(children[*a.ParentID], a)
			}
		}
		visited := map[string]bool{id: true}
		queue := []string{id}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, c := range children[cur] {
				if visited[c.ID] {
					continue
				}
				visited[c.ID] = true
				list = append(list, copyAccount(c))
				queue = append(queue, c.ID)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *AccountRepo) HasJournalLines(_ context.Context, id string) (bool, error) {
	found := false
	r.v.read(func(st *state) {
		for _, e := range st.entries {
			for _, l := range e.Lines {
				if l.AccountID == id {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}
