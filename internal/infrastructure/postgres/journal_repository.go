package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

var entryColumns = []string{"id", "date", "description", "voucher", "source", "reverses_entry_id", "created_at", "created_by"}

type entryRow struct {
	ID              string    `db:"id"`
	Date            time.Time `db:"date"`
	Description     string    `db:"description"`
	Voucher         *string   `db:"voucher"`
	Source          string    `db:"source"`
	ReversesEntryID *string   `db:"reverses_entry_id"`
	CreatedAt       time.Time `db:"created_at"`
	CreatedBy       *string   `db:"created_by"`
}

type lineRow struct {
	ID          string          `db:"id"`
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountID   string          `db:"account_id"`
	AccountCode string          `db:"account_code"`
	Side        string          `db:"side"`
	Amount      decimal.Decimal `db:"amount"`
	Memo        *string         `db:"memo"`
}

func (r entryRow) toEntity() *entity.JournalEntry {
	e := &entity.JournalEntry{
		ID:              r.ID,
		Date:            r.Date,
		Description:     r.Description,
		Voucher:         r.Voucher,
		Source:          entity.EntrySource(r.Source),
		ReversesEntryID: r.ReversesEntryID,
		CreatedAt:       r.CreatedAt,
	}
	if r.CreatedBy != nil {
		e.CreatedBy = *r.CreatedBy
	}
	return e
}

func (r lineRow) toEntity() entity.JournalLine {
	l := entity.JournalLine{
		ID:          r.ID,
		EntryID:     r.EntryID,
		LineNo:      r.LineNo,
		AccountID:   r.AccountID,
		AccountCode: r.AccountCode,
		Side:        entity.Side(r.Side),
		Amount:      r.Amount,
	}
	if r.Memo != nil {
		l.Memo = *r.Memo
	}
	return l
}

// JournalRepo asientos y líneas sobre PostgreSQL.
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

// Create inserta cabecera y líneas en un solo batch. Debe ejecutarse dentro de una
// transacción para que un fallo en las líneas no deje la cabecera huérfana.
func (r *JournalRepo) Create(ctx context.Context, e *entity.JournalEntry) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journal_entries (id, date, description, voucher, source, reverses_entry_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Date, e.Description, e.Voucher, e.Source, e.ReversesEntryID, e.CreatedAt, nullable(e.CreatedBy))
	for i := range e.Lines {
		l := &e.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.EntryID = e.ID
		batch.Queue(`
			INSERT INTO journal_lines (id, entry_id, line_no, account_id, account_code, side, amount, memo)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.EntryID, l.LineNo, l.AccountID, l.AccountCode, l.Side, l.Amount, nullable(l.Memo))
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return mapUniqueViolation(err)
			}
			return fmt.Errorf("insert journal entry: %w", err)
		}
	}
	return nil
}

func (r *JournalRepo) getOne(ctx context.Context, label string, where sq.Eq) (*entity.JournalEntry, error) {
	list, err := r.selectEntries(ctx, label, psql.Select(entryColumns...).From("journal_entries").Where(where))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *JournalRepo) GetByID(ctx context.Context, id string) (*entity.JournalEntry, error) {
	return r.getOne(ctx, "get entry", sq.Eq{"id": id})
}

func (r *JournalRepo) GetByVoucher(ctx context.Context, voucher string) (*entity.JournalEntry, error) {
	return r.getOne(ctx, "get entry by voucher", sq.Eq{"voucher": voucher})
}

// entriesQuery arma el listado filtrado de asientos, más recientes primero.
func entriesQuery(f repository.EntryFilter) sq.SelectBuilder {
	q := psql.Select(entryColumns...).From("journal_entries")
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"date": *f.To})
	}
	if f.Voucher != "" {
		q = q.Where(sq.Eq{"voucher": f.Voucher})
	}
	if f.Source != "" {
		q = q.Where(sq.Eq{"source": string(f.Source)})
	}
	if f.AccountID != "" {
		q = q.Where(sq.Expr("EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = journal_entries.id AND l.account_id = ?)", f.AccountID))
	}
	q = q.OrderBy("date DESC", "created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

func (r *JournalRepo) List(ctx context.Context, f repository.EntryFilter) ([]*entity.JournalEntry, error) {
	return r.selectEntries(ctx, "list entries", entriesQuery(f))
}

// selectEntries carga las cabeceras y luego todas sus líneas en una segunda consulta.
func (r *JournalRepo) selectEntries(ctx context.Context, label string, q sq.SelectBuilder) ([]*entity.JournalEntry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []entryRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	list := make([]*entity.JournalEntry, len(rows))
	byID := make(map[string]*entity.JournalEntry, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		list[i] = row.toEntity()
		byID[row.ID] = list[i]
		ids[i] = row.ID
	}

	sql, args, err = psql.Select("id", "entry_id", "line_no", "account_id", "account_code", "side", "amount", "memo").
		From("journal_lines").
		Where(sq.Eq{"entry_id": ids}).
		OrderBy("entry_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var lines []lineRow
	if err := pgxscan.Select(ctx, r.q, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("%s lines: %w", label, err)
	}
	for _, l := range lines {
		e := byID[l.EntryID]
		e.Lines = append(e.Lines, l.toEntity())
	}
	return list, nil
}

func (r *JournalRepo) HasReversal(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE reverses_entry_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has reversal: %w", err)
	}
	return exists, nil
}

// Delete borra el asiento; las líneas caen por ON DELETE CASCADE.
func (r *JournalRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
