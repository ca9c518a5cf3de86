package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo asientos en memoria. El índice de comprobantes emula el constraint único.
type JournalRepo struct {
	v *view
}

func (r *JournalRepo) Create(_ context.Context, entry *entity.JournalEntry) error {
	return r.v.write(func(st *state) error {
		if v := entry.VoucherValue(); v != "" {
			if _, ok := st.vouchers[v]; ok {
				return domain.ErrDuplicateVoucher
			}
			st.vouchers[v] = entry.ID
		}
		st.entries[entry.ID] = copyEntry(entry)
		return nil
	})
}

func (r *JournalRepo) GetByID(_ context.Context, id string) (*entity.JournalEntry, error) {
	var out *entity.JournalEntry
	r.v.read(func(st *state) {
		if e, ok := st.entries[id]; ok {
			out = copyEntry(e)
		}
	})
	return out, nil
}

func (r *JournalRepo) GetByVoucher(ctx context.Context, voucher string) (*entity.JournalEntry, error) {
	var id string
	r.v.read(func(st *state) { id = st.vouchers[voucher] })
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *JournalRepo) List(_ context.Context, f repository.EntryFilter) ([]*entity.JournalEntry, error) {
	var list []*entity.JournalEntry
	r.v.read(func(st *state) {
		for _, e := range st.entries {
			if f.From != nil && e.Date.Before(*f.From) {
				continue
			}
			if f.To != nil && e.Date.After(*f.To) {
				continue
			}
			if f.Voucher != "" && e.VoucherValue() != f.Voucher {
				continue
			}
			if f.Source != "" && e.Source != f.Source {
				continue
			}
			if f.AccountID != "" && !touches(e, f.AccountID) {
				continue
			}
			list = append(list, copyEntry(e))
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return page(list, f.Limit, f.Offset), nil
}

func touches(e *entity.JournalEntry, accountID string) bool {
	for _, l := range e.Lines {
		if l.AccountID == accountID {
			return true
		}
	}
	return false
}

func (r *JournalRepo) HasReversal(_ context.Context, id string) (bool, error) {
	found := false
	r.v.read(func(st *state) {
		for _, e := range st.entries {
			if e.ReversesEntryID != nil && *e.ReversesEntryID == id {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *JournalRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return domain.ErrEntryNotFound
		}
		if v := e.VoucherValue(); v != "" {
			delete(st.vouchers, v)
		}
		delete(st.entries, id)
		return nil
	})
}
