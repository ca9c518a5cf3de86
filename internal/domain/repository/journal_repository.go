package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// EntryFilter filtros del listado de asientos.
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	AccountID string
	Voucher   string
	Source    entity.EntrySource
	Limit     int
	Offset    int
}

// JournalRepository define el puerto de persistencia de asientos y líneas.
type JournalRepository interface {
	// Create inserta cabecera y líneas. Un comprobante repetido devuelve domain.ErrDuplicateVoucher.
	Create(ctx context.Context, entry *entity.JournalEntry) error
	GetByID(ctx context.Context, id string) (*entity.JournalEntry, error)
	GetByVoucher(ctx context.Context, voucher string) (*entity.JournalEntry, error)
	List(ctx context.Context, filter EntryFilter) ([]*entity.JournalEntry, error)
	// HasReversal indica si algún asiento reversa al indicado.
	HasReversal(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
