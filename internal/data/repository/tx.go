package repository

import (
	"context"
	"fmt"

	"event-ticketing/pkg/database"

	"go.uber.org/zap"
)

// Transactor executes fn inside a single database transaction. Returning an
// error (or panicking) from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo *Repository) error) error
}

type pgxTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &pgxTransactor{
		db:  db,
		log: log.With(zap.String("repository", "tx")),
	}
}

func (t *pgxTransactor) WithinTx(ctx context.Context, fn func(repo *Repository) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	txRepo := newRepositorySet(tx, t.log)
	txRepo.Tx = joinedTransactor{repo: txRepo}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			t.log.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// joinedTransactor: nested WithinTx reuses the outer transaction
type joinedTransactor struct {
	repo *Repository
}

func (j joinedTransactor) WithinTx(_ context.Context, fn func(repo *Repository) error) error {
	return fn(j.repo)
}
