package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/accounting"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReversalSuffix se agrega al comprobante del asiento reversado.
const ReversalSuffix = "-REV"

// LineInput línea del asiento. La cuenta se referencia por AccountID o por AccountCode.
type LineInput struct {
	AccountID   string
	AccountCode string
	Side        entity.Side
	Amount      decimal.Decimal
	Memo        string
}

// EntryInput datos de un asiento nuevo. Date cero toma la fecha actual; Source vacío es MANUAL.
type EntryInput struct {
	ID              string // opcional; el coordinador lo fija antes de registrar el kardex
	Date            time.Time
	Description     string
	Voucher         string
	Source          entity.EntrySource
	ReversesEntryID *string
	Actor           string
	Lines           []LineInput
}

// JournalEngine motor del libro diario: solo acepta asientos cuadrados contra cuentas activas.
type JournalEngine struct {
	uow   repository.UnitOfWork
	reads repository.Repos
	log   zerolog.Logger
	now   func() time.Time
}

// NewJournalEngine construye el motor.
func NewJournalEngine(uow repository.UnitOfWork, reads repository.Repos, log zerolog.Logger) *JournalEngine {
	return &JournalEngine{
		uow:   uow,
		reads: reads,
		log:   log.With().Str("component", "journal_engine").Logger(),
		now:   time.Now,
	}
}

// ValidateBalance calcula totales y cuadre sin persistir nada.
func (e *JournalEngine) ValidateBalance(lines []LineInput) accounting.BalanceResult {
	return accounting.ValidateBalance(toLines(lines))
}

func toLines(in []LineInput) []entity.JournalLine {
	lines := make([]entity.JournalLine, len(in))
	for i, l := range in {
		lines[i] = entity.JournalLine{
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			AccountCode: strings.TrimSpace(l.AccountCode),
			Side:        l.Side,
			Amount:      l.Amount,
			Memo:        l.Memo,
		}
	}
	return lines
}

// CreateEntry valida y persiste un asiento en su propia transacción.
func (e *JournalEngine) CreateEntry(ctx context.Context, in EntryInput) (*entity.JournalEntry, error) {
	var entry *entity.JournalEntry
	err := e.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		entry, err = e.CreateEntryInTx(ctx, repos, in, e.now())
		return err
	})
	if err != nil {
		e.logRejected(in, err)
		return nil, err
	}
	e.log.Info().
		Str("entry_id", entry.ID).
		Str("voucher", entry.VoucherValue()).
		Str("source", string(entry.Source)).
		Int("lines", len(entry.Lines)).
		Msg("asiento registrado")
	return entry, nil
}

// CreateEntryInTx valida y persiste el asiento con los repositorios de una transacción abierta.
// Orden de validación: líneas, cuentas existentes, cuentas activas, cuadre, comprobante.
func (e *JournalEngine) CreateEntryInTx(ctx context.Context, repos repository.Repos, in EntryInput, now time.Time) (*entity.JournalEntry, error) {
	lines := toLines(in.Lines)
	if err := accounting.ValidateLines(lines); err != nil {
		return nil, err
	}
	if err := resolveAccounts(ctx, repos.Accounts, lines); err != nil {
		return nil, err
	}
	if bal := accounting.ValidateBalance(lines); !bal.Balanced {
		return nil, &domain.UnbalancedEntryError{TotalDebits: bal.TotalDebits, TotalCredits: bal.TotalCredits}
	}

	entry := &entity.JournalEntry{
		ID:              in.ID,
		Date:            in.Date,
		Description:     strings.TrimSpace(in.Description),
		Source:          in.Source,
		ReversesEntryID: in.ReversesEntryID,
		CreatedAt:       now,
		CreatedBy:       in.Actor,
		Lines:           lines,
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Date.IsZero() {
		entry.Date = now
	}
	if entry.Source == "" {
		entry.Source = entity.SourceManual
	}
	if v := strings.TrimSpace(in.Voucher); v != "" {
		existing, err := repos.Journal.GetByVoucher(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("get entry voucher=%s: %w", v, err)
		}
		if existing != nil {
			return nil, domain.ErrDuplicateVoucher
		}
		entry.Voucher = &v
	}
	for i := range entry.Lines {
		entry.Lines[i].ID = uuid.New().String()
		entry.Lines[i].EntryID = entry.ID
	}

	if err := repos.Journal.Create(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create entry id=%s: %w", entry.ID, err)
	}
	return entry, nil
}

// resolveAccounts completa AccountID y AccountCode de cada línea y exige cuentas activas.
// Las cuentas quedan bloqueadas en modo compartido hasta el commit, así una
// desactivación concurrente espera y luego ve las líneas nuevas.
// Primero se reporta cualquier cuenta inexistente y luego cualquier inactiva.
func resolveAccounts(ctx context.Context, accounts repository.AccountRepository, lines []entity.JournalLine) error {
	ids := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case l.AccountID != "":
			ids[i] = l.AccountID
		case l.AccountCode != "":
			a, err := accounts.GetByCode(ctx, l.AccountCode)
			if err != nil {
				return fmt.Errorf("get account code=%s: %w", l.AccountCode, err)
			}
			if a == nil {
				return &domain.AccountNotFoundError{Ref: l.AccountCode}
			}
			ids[i] = a.ID
		default:
			return fmt.Errorf("%w: línea %d sin cuenta", domain.ErrInvalidInput, l.LineNo)
		}
	}
	locked, err := accounts.LockByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("lock accounts: %w", err)
	}
	for i, id := range ids {
		if locked[id] == nil {
			ref := lines[i].AccountID
			if ref == "" {
				ref = lines[i].AccountCode
			}
			return &domain.AccountNotFoundError{Ref: ref}
		}
	}
	for i, id := range ids {
		a := locked[id]
		if !a.IsActive() {
			return &domain.InactiveAccountError{Code: a.Code}
		}
		lines[i].AccountID = a.ID
		lines[i].AccountCode = a.Code
	}
	return nil
}

func (e *JournalEngine) logRejected(in EntryInput, err error) {
	ev := e.log.Error()
	if errors.Is(err, domain.ErrBusinessRule) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicate) {
		ev = e.log.Warn()
	}
	ev.Err(err).Str("voucher", in.Voucher).Int("lines", len(in.Lines)).Msg("asiento rechazado")
}

// GetEntry devuelve el asiento con sus líneas.
func (e *JournalEngine) GetEntry(ctx context.Context, id string) (*entity.JournalEntry, error) {
	entry, err := e.reads.Journal.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry id=%s: %w", id, err)
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}
	return entry, nil
}

// ListEntries lista asientos filtrados, más recientes primero.
func (e *JournalEngine) ListEntries(ctx context.Context, filter repository.EntryFilter) ([]*entity.JournalEntry, error) {
	list, err := e.reads.Journal.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return list, nil
}

// DeleteEntry elimina un asiento manual que nadie haya reversado. Un manual ya
// reversado se deja como está; los de documentos se corrigen anulando el documento.
func (e *JournalEngine) DeleteEntry(ctx context.Context, id string) error {
	err := e.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		entry, err := repos.Journal.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get entry id=%s: %w", id, err)
		}
		if entry == nil {
			return domain.ErrEntryNotFound
		}
		if entry.Source != entity.SourceManual {
			return domain.ErrEntryHasDependents
		}
		reversed, err := repos.Journal.HasReversal(ctx, id)
		if err != nil {
			return fmt.Errorf("reversal entry id=%s: %w", id, err)
		}
		if reversed {
			return domain.ErrEntryHasDependents
		}
		return repos.Journal.Delete(ctx, id)
	})
	if err != nil {
		e.log.Warn().Err(err).Str("entry_id", id).Msg("eliminación rechazada")
		return err
	}
	e.log.Info().Str("entry_id", id).Msg("asiento eliminado")
	return nil
}

// ReverseEntry crea el asiento de reversión (naturalezas invertidas) del asiento indicado.
// Los asientos de documentos se rechazan: su reversión debe devolver también el kardex.
func (e *JournalEngine) ReverseEntry(ctx context.Context, id, actor string) (*entity.JournalEntry, error) {
	var rev *entity.JournalEntry
	err := e.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		orig, err := repos.Journal.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get entry id=%s: %w", id, err)
		}
		if orig == nil {
			return domain.ErrEntryNotFound
		}
		if orig.FromDocument() {
			return fmt.Errorf("%w (origen %s)", domain.ErrDocumentEntry, orig.Source)
		}
		rev, err = e.ReverseEntryInTx(ctx, repos, id, actor, entity.SourceReversal, e.now())
		return err
	})
	if err != nil {
		e.log.Warn().Err(err).Str("entry_id", id).Msg("reversión rechazada")
		return nil, err
	}
	e.log.Info().Str("entry_id", id).Str("reversal_id", rev.ID).Msg("asiento reversado")
	return rev, nil
}

// ReverseEntryInTx es ReverseEntry dentro de una transacción abierta por el llamador.
// source distingue una reversión manual (REVERSAL) de una anulación de documento (VOID).
// Un asiento de reversión no se reversa y ningún asiento se reversa dos veces.
func (e *JournalEngine) ReverseEntryInTx(ctx context.Context, repos repository.Repos, id, actor string, source entity.EntrySource, now time.Time) (*entity.JournalEntry, error) {
	orig, err := repos.Journal.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry id=%s: %w", id, err)
	}
	if orig == nil {
		return nil, domain.ErrEntryNotFound
	}
	if orig.Source == entity.SourceReversal || orig.Source == entity.SourceVoid {
		return nil, domain.ErrInvalidTransition
	}
	reversed, err := repos.Journal.HasReversal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reversal entry id=%s: %w", id, err)
	}
	if reversed {
		return nil, domain.ErrAlreadyVoided
	}

	lines := make([]LineInput, len(orig.Lines))
	for i, l := range orig.Lines {
		lines[i] = LineInput{AccountID: l.AccountID, Side: l.Side.Opposite(), Amount: l.Amount, Memo: l.Memo}
	}
	in := EntryInput{
		Date:            now,
		Description:     "Reversión: " + orig.Description,
		Source:          source,
		ReversesEntryID: &orig.ID,
		Actor:           actor,
		Lines:           lines,
	}
	if v := orig.VoucherValue(); v != "" {
		in.Voucher = v + ReversalSuffix
	}
	return e.CreateEntryInTx(ctx, repos, in, now)
}
