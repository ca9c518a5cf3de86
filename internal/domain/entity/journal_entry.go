package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side naturaleza de una línea contable.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Opposite devuelve la naturaleza contraria (usada en reversiones).
func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// EntrySource origen del asiento.
type EntrySource string

const (
	SourceManual     EntrySource = "MANUAL"
	SourcePurchase   EntrySource = "PURCHASE"
	SourceSale       EntrySource = "SALE"
	SourceShrinkage  EntrySource = "SHRINKAGE"
	SourceAdjustment EntrySource = "ADJUSTMENT"
	SourceVoid       EntrySource = "VOID"
	SourceReversal   EntrySource = "REVERSAL"
)

// JournalEntry asiento contable de partida doble. Inmutable tras su creación.
type JournalEntry struct {
	ID              string
	Date            time.Time
	Description     string
	Voucher         *string // comprobante, único cuando existe
	Source          EntrySource
	ReversesEntryID *string
	CreatedAt       time.Time
	CreatedBy       string
	Lines           []JournalLine
}

// JournalLine línea de débito o crédito contra una cuenta.
type JournalLine struct {
	ID          string
	EntryID     string
	LineNo      int
	AccountID   string
	AccountCode string
	Side        Side
	Amount      decimal.Decimal
	Memo        string
}

// VoucherValue devuelve el comprobante o cadena vacía.
func (e *JournalEntry) VoucherValue() string {
	if e.Voucher == nil {
		return ""
	}
	return *e.Voucher
}

// FromDocument indica si el asiento lo generó un documento con movimientos de
// kardex. Esos asientos solo se reversan anulando el documento.
func (e *JournalEntry) FromDocument() bool {
	switch e.Source {
	case SourcePurchase, SourceSale, SourceShrinkage, SourceAdjustment:
		return true
	}
	return false
}
