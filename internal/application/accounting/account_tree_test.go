package accounting

import (
	"context"
	"testing"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) (*AccountTree, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewAccountTree(store, store.Repos(), zerolog.Nop()), store
}

func TestAccountTree_Create(t *testing.T) {
	tree, _ := newTree(t)
	ctx := context.Background()

	activo, err := tree.Create(ctx, AccountInput{Code: "1", Name: "Activo", Type: entity.AccountAsset})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, activo.Status)

	_, err = tree.Create(ctx, AccountInput{Code: "1", Name: "Otro", Type: entity.AccountAsset})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountCode)

	_, err = tree.Create(ctx, AccountInput{Code: "11A", Name: "X", Type: entity.AccountAsset})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountCode)

	_, err = tree.Create(ctx, AccountInput{Code: "12345678901", Name: "X", Type: entity.AccountAsset})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountCode)

	_, err = tree.Create(ctx, AccountInput{Code: "2", Name: "X", Type: "OTHER"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountType)

	missing := "nope"
	_, err = tree.Create(ctx, AccountInput{Code: "11", Name: "Disponible", Type: entity.AccountAsset, ParentID: &missing})
	var nf *domain.AccountNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Ref)
}

func TestAccountTree_RechazaCiclos(t *testing.T) {
	tree, _ := newTree(t)
	ctx := context.Background()

	a, err := tree.Create(ctx, AccountInput{Code: "1", Name: "Activo", Type: entity.AccountAsset})
	require.NoError(t, err)
	b, err := tree.Create(ctx, AccountInput{Code: "11", Name: "Disponible", Type: entity.AccountAsset, ParentID: &a.ID})
	require.NoError(t, err)
	c, err := tree.Create(ctx, AccountInput{Code: "1105", Name: "Caja", Type: entity.AccountAsset, ParentID: &b.ID})
	require.NoError(t, err)

	_, err = tree.Update(ctx, a.ID, AccountUpdate{ParentID: &c.ID})
	assert.ErrorIs(t, err, domain.ErrCyclicAccountHierarchy)

	_, err = tree.Update(ctx, a.ID, AccountUpdate{ParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrCyclicAccountHierarchy)

	got, err := tree.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID, "el rechazo no debe mover la cuenta")

	desc, err := tree.GetDescendants(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, desc, 2)

	// mover una hoja a otra rama sí es válido
	d, err := tree.Create(ctx, AccountInput{Code: "2", Name: "Pasivo", Type: entity.AccountLiability})
	require.NoError(t, err)
	name := "Caja general"
	moved, err := tree.Update(ctx, c.ID, AccountUpdate{ParentID: &d.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, d.ID, *moved.ParentID)
	assert.Equal(t, "Caja general", moved.Name)

	detached, err := tree.Update(ctx, c.ID, AccountUpdate{DetachParent: true})
	require.NoError(t, err)
	assert.Nil(t, detached.ParentID)
}

func TestAccountTree_DeactivateConDependientes(t *testing.T) {
	tree, store := newTree(t)
	ctx := context.Background()
	journal := NewJournalEngine(store, store.Repos(), zerolog.Nop())

	parent, err := tree.Create(ctx, AccountInput{Code: "11", Name: "Disponible", Type: entity.AccountAsset})
	require.NoError(t, err)
	child, err := tree.Create(ctx, AccountInput{Code: "1105", Name: "Caja", Type: entity.AccountAsset, ParentID: &parent.ID})
	require.NoError(t, err)
	income, err := tree.Create(ctx, AccountInput{Code: "4135", Name: "Ventas", Type: entity.AccountIncome})
	require.NoError(t, err)

	_, err = tree.Deactivate(ctx, parent.ID)
	assert.ErrorIs(t, err, domain.ErrAccountHasDependents, "tiene subcuenta activa")

	_, err = journal.CreateEntry(ctx, EntryInput{
		Description: "Venta",
		Lines: []LineInput{
			{AccountID: child.ID, Side: entity.SideDebit, Amount: decimal.NewFromInt(10)},
			{AccountID: income.ID, Side: entity.SideCredit, Amount: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	_, err = tree.Deactivate(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrAccountHasDependents, "tiene líneas contables")

	empty, err := tree.Create(ctx, AccountInput{Code: "1110", Name: "Bancos", Type: entity.AccountAsset, ParentID: &parent.ID})
	require.NoError(t, err)
	off, err := tree.Deactivate(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeactivated, off.Status)

	_, err = tree.Deactivate(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	on, err := tree.Activate(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, on.Status)
}

func TestAccountTree_Lookups(t *testing.T) {
	tree, _ := newTree(t)
	ctx := context.Background()
	_, err := tree.Create(ctx, AccountInput{Code: "2408", Name: "IVA por pagar", Type: entity.AccountLiability})
	require.NoError(t, err)

	a, err := tree.GetByCode(ctx, "2408")
	require.NoError(t, err)
	assert.Equal(t, "IVA por pagar", a.Name)

	_, err = tree.GetByCode(ctx, "9999")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = tree.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := tree.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccountTree_PadreInactivo(t *testing.T) {
	tree, _ := newTree(t)
	ctx := context.Background()

	parent, err := tree.Create(ctx, AccountInput{Code: "11", Name: "Disponible", Type: entity.AccountAsset})
	require.NoError(t, err)
	child, err := tree.Create(ctx, AccountInput{Code: "1105", Name: "Caja", Type: entity.AccountAsset, ParentID: &parent.ID})
	require.NoError(t, err)
	other, err := tree.Create(ctx, AccountInput{Code: "1110", Name: "Bancos", Type: entity.AccountAsset})
	require.NoError(t, err)

	_, err = tree.Deactivate(ctx, child.ID)
	require.NoError(t, err)
	_, err = tree.Deactivate(ctx, parent.ID)
	require.NoError(t, err)

	_, err = tree.Activate(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrInactiveParentAccount)

	_, err = tree.Create(ctx, AccountInput{Code: "1120", Name: "Fondos", Type: entity.AccountAsset, ParentID: &parent.ID})
	assert.ErrorIs(t, err, domain.ErrInactiveParentAccount)

	_, err = tree.Update(ctx, other.ID, AccountUpdate{ParentID: &parent.ID})
	assert.ErrorIs(t, err, domain.ErrInactiveParentAccount)

	got, err := tree.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeactivated, got.Status)

	// reactivando de arriba hacia abajo sí se permite
	_, err = tree.Activate(ctx, parent.ID)
	require.NoError(t, err)
	on, err := tree.Activate(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, on.Status)
}

func TestAccountTree_CambiosDePadreCruzados(t *testing.T) {
	tree, _ := newTree(t)
	ctx := context.Background()

	a, err := tree.Create(ctx, AccountInput{Code: "13", Name: "Deudores", Type: entity.AccountAsset})
	require.NoError(t, err)
	b, err := tree.Create(ctx, AccountInput{Code: "14", Name: "Inventarios", Type: entity.AccountAsset})
	require.NoError(t, err)

	errs := make(chan error, 2)
	go func() {
		_, err := tree.Update(ctx, a.ID, AccountUpdate{ParentID: &b.ID})
		errs <- err
	}()
	go func() {
		_, err := tree.Update(ctx, b.ID, AccountUpdate{ParentID: &a.ID})
		errs <- err
	}()
	first, second := <-errs, <-errs

	// exactamente uno gana; el otro vería el ciclo
	if first == nil {
		assert.ErrorIs(t, second, domain.ErrCyclicAccountHierarchy)
	} else {
		assert.ErrorIs(t, first, domain.ErrCyclicAccountHierarchy)
		assert.NoError(t, second)
	}

	gotA, err := tree.Get(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := tree.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, gotA.ParentID != nil && gotB.ParentID != nil, "no puede quedar un ciclo A<->B")
}
