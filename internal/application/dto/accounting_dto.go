package dto

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest body para POST /api/accounts.
type CreateAccountRequest struct {
	Code     string  `json:"code" validate:"required,numeric,min=1,max=10"`
	Name     string  `json:"name" validate:"required,max=200"`
	Type     string  `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateAccountRequest body para PUT /api/accounts/:id. Código y tipo no se modifican.
type UpdateAccountRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID     *string `json:"parent_id"`
	DetachParent bool    `json:"detach_parent"`
}

// AccountResponse salida de una cuenta.
type AccountResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	ParentID  *string   `json:"parent_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JournalLineRequest línea de un asiento manual; se acepta account_id o account_code.
type JournalLineRequest struct {
	AccountID   string          `json:"account_id" validate:"required_without=AccountCode"`
	AccountCode string          `json:"account_code" validate:"required_without=AccountID"`
	Side        string          `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty" validate:"max=500"`
}

// CreateEntryRequest body para POST /api/journal/entries.
type CreateEntryRequest struct {
	Date        *time.Time           `json:"date,omitempty"`
	Description string               `json:"description" validate:"required,max=500"`
	Voucher     string               `json:"voucher,omitempty" validate:"max=60"`
	Lines       []JournalLineRequest `json:"lines" validate:"required,min=2,dive"`
}

// ValidateBalanceRequest body para POST /api/journal/validate.
type ValidateBalanceRequest struct {
	Lines []JournalLineRequest `json:"lines" validate:"required,dive"`
}

// EntryFilterRequest filtros del listado de asientos en query string.
type EntryFilterRequest struct {
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset    int    `query:"offset" validate:"min=0"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AccountID string `query:"account_id"`
	Voucher   string `query:"voucher"`
	Source    string `query:"source" validate:"omitempty,oneof=MANUAL PURCHASE SALE SHRINKAGE ADJUSTMENT VOID REVERSAL"`
}

// JournalLineResponse línea de un asiento.
type JournalLineResponse struct {
	LineNo      int             `json:"line_no"`
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
}

// JournalEntryResponse asiento con sus líneas.
type JournalEntryResponse struct {
	ID              string                `json:"id"`
	Date            time.Time             `json:"date"`
	Description     string                `json:"description"`
	Voucher         *string               `json:"voucher"`
	Source          string                `json:"source"`
	ReversesEntryID *string               `json:"reverses_entry_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	CreatedBy       string                `json:"created_by"`
	Lines           []JournalLineResponse `json:"lines"`
}

// NewAccountResponse mapea una cuenta.
func NewAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Type:      string(a.Type),
		ParentID:  a.ParentID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewAccountList mapea una lista de cuentas.
func NewAccountList(list []*entity.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAccountResponse(a))
	}
	return out
}

// NewJournalEntryResponse mapea un asiento.
func NewJournalEntryResponse(e *entity.JournalEntry) *JournalEntryResponse {
	if e == nil {
		return nil
	}
	lines := make([]JournalLineResponse, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, JournalLineResponse{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        string(l.Side),
			Amount:      l.Amount,
			Memo:        l.Memo,
		})
	}
	return &JournalEntryResponse{
		ID:              e.ID,
		Date:            e.Date,
		Description:     e.Description,
		Voucher:         e.Voucher,
		Source:          string(e.Source),
		ReversesEntryID: e.ReversesEntryID,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		Lines:           lines,
	}
}

// NewJournalEntryList mapea una lista de asientos.
func NewJournalEntryList(list []*entity.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, *NewJournalEntryResponse(e))
	}
	return out
}
