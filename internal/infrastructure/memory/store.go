// Package memory implementa los puertos de persistencia en memoria.
// Se usa en desarrollo (STORAGE_DRIVER=memory) y en las pruebas de los motores.
//
// Cada unidad de trabajo toma el lock de escritura global, trabaja sobre una copia
// del estado y la publica solo si fn termina sin error: el rollback es descartar la copia.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.UnitOfWork = (*Store)(nil)

type state struct {
	products  map[string]*entity.Product
	skus      map[string]string
	movements []*entity.InventoryMovement // en orden de Seq
	seq       int64
	accounts  map[string]*entity.Account
	codes     map[string]string
	entries   map[string]*entity.JournalEntry
	vouchers  map[string]string
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		skus:     make(map[string]string),
		accounts: make(map[string]*entity.Account),
		codes:    make(map[string]string),
		entries:  make(map[string]*entity.JournalEntry),
		vouchers: make(map[string]string),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]*entity.Product, len(s.products)),
		skus:      make(map[string]string, len(s.skus)),
		movements: make([]*entity.InventoryMovement, len(s.movements)),
		seq:       s.seq,
		accounts:  make(map[string]*entity.Account, len(s.accounts)),
		codes:     make(map[string]string, len(s.codes)),
		entries:   make(map[string]*entity.JournalEntry, len(s.entries)),
		vouchers:  make(map[string]string, len(s.vouchers)),
	}
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for k, v := range s.accounts {
		c.accounts[k] = copyAccount(v)
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = copyEntry(v)
	}
	for k, v := range s.vouchers {
		c.vouchers[k] = v
	}
	return c
}

// Store almacén en memoria. Implementa repository.UnitOfWork.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Repos devuelve repositorios fuera de transacción; cada operación es atómica por sí sola.
func (s *Store) Repos() repository.Repos {
	return bind(&view{store: s})
}

// Run ejecuta fn con exclusión total sobre el almacén y publica los cambios solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, bind(&view{store: s, st: work, inTx: true})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// view resuelve sobre qué estado opera un repositorio: la copia de la tx o el estado publicado.
type view struct {
	store *Store
	st    *state
	inTx  bool
}

func (v *view) read(fn func(st *state)) {
	if v.inTx {
		fn(v.st)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.inTx {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func bind(v *view) repository.Repos {
	return repository.Repos{
		Products:  &ProductRepo{v: v},
		Movements: &InventoryMovementRepo{v: v},
		Accounts:  &AccountRepo{v: v},
		Journal:   &JournalRepo{v: v},
	}
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyMovement(m *entity.InventoryMovement) *entity.InventoryMovement {
	c := *m
	if m.UnitCost != nil {
		uc := *m.UnitCost
		c.UnitCost = &uc
	}
	if m.EntryID != nil {
		id := *m.EntryID
		c.EntryID = &id
	}
	return &c
}

func copyAccount(a *entity.Account) *entity.Account {
	c := *a
	if a.ParentID != nil {
		p := *a.ParentID
		c.ParentID = &p
	}
	return &c
}

func copyEntry(e *entity.JournalEntry) *entity.JournalEntry {
	c := *e
	if e.Voucher != nil {
		v := *e.Voucher
		c.Voucher = &v
	}
	if e.ReversesEntryID != nil {
		r := *e.ReversesEntryID
		c.ReversesEntryID = &r
	}
	c.Lines = append([]entity.JournalLine(nil), e.Lines...)
	return &c
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
