package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RollbackDescartaCambios(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("fallo simulado")

	err := s.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		require.NoError(t, r.Products.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Status: entity.StatusActive}))
		require.NoError(t, r.Movements.Create(ctx, &entity.InventoryMovement{ProductID: "p1", Quantity: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Repos().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p, "el producto no debe sobrevivir al rollback")
	movs, err := s.Repos().Movements.ListForReplay(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		if err := r.Products.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Status: entity.StatusActive}); err != nil {
			return err
		}
		return r.Products.UpdateValuation(ctx, "p1", 10, decimal.NewFromInt(5))
	})
	require.NoError(t, err)

	p, err := s.Repos().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(10), p.Stock)
}

func TestMovements_SeqMonotonicoYKardexDescendente(t *testing.T) {
	s := New()
	ctx := context.Background()
	repos := s.Repos()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		m := &entity.InventoryMovement{ProductID: "p1", Kind: entity.MovementEntrada, Quantity: int64(i + 1), CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repos.Movements.Create(ctx, m))
		assert.Equal(t, int64(i+1), m.Seq)
	}
	list, err := repos.Movements.ListByProduct(ctx, "p1", repository.KardexFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].Seq)
	assert.Equal(t, int64(2), list[1].Seq)
}

func TestAccounts_GetDescendants(t *testing.T) {
	s := New()
	ctx := context.Background()
	repos := s.Repos()
	ptr := func(v string) *string { return &v }
	require.NoError(t, repos.Accounts.Create(ctx, &entity.Account{ID: "1", Code: "1"}))
	require.NoError(t, repos.Accounts.Create(ctx, &entity.Account{ID: "11", Code: "11", ParentID: ptr("1")}))
	require.NoError(t, repos.Accounts.Create(ctx, &entity.Account{ID: "1105", Code: "1105", ParentID: ptr("11")}))
	require.NoError(t, repos.Accounts.Create(ctx, &entity.Account{ID: "2", Code: "2"}))

	desc, err := repos.Accounts.GetDescendants(ctx, "1")
	require.NoError(t, err)
	codes := []string{}
	for _, a := range desc {
		codes = append(codes, a.Code)
	}
	assert.Equal(t, []string{"11", "1105"}, codes)
}
