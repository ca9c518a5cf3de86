package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("backoffice-api/postgres")

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork ejecuta callbacks dentro de una transacción PostgreSQL.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork construye la unidad de trabajo con el pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// Repos devuelve repositorios atados al pool, para lecturas fuera de transacción.
func (u *UnitOfWork) Repos() repository.Repos {
	return bind(u.pool)
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y
// hace Commit o Rollback. La serialización por producto la da SELECT ... FOR UPDATE.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) (err error) {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func bind(q Querier) repository.Repos {
	return repository.Repos{
		Products:  NewProductRepository(q),
		Movements: NewInventoryMovementRepository(q),
		Accounts:  NewAccountRepository(q),
		Journal:   NewJournalRepository(q),
	}
}
