package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
)

type RepositoryProviderImpl struct {
	db      *sql.DB
	queries *Queries
}

func (p *RepositoryProviderImpl) Samples() outbound.SampleRepository {
	return &SampleRepositoryImpl{
		Db:      p.db,
		Queries: p.queries,
	}
}

// UnitOfWorkImpl runs one driver's sample swap in a read-committed
// transaction. The advisory lock taken inside serializes writers of the same
// driver, so a stronger isolation level would only add retries.
type UnitOfWorkImpl struct {
	db   *sql.DB
	opts *sql.TxOptions
}

func NewUnitOfWork(db *sql.DB) *UnitOfWorkImpl {
	return &UnitOfWorkImpl{db: db, opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(provider outbound.RepositoryProvider) error) (err error) {
	tx, err := u.db.BeginTx(ctx, u.opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
		}
	}()

	provider := &RepositoryProviderImpl{
		db:      u.db,
		queries: New(u.db).WithTx(tx),
	}
	if err = fn(provider); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
