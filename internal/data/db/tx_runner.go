package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
)

// TxRunner is the shared transaction boundary for multi-row writes.
type TxRunner interface {
	// InTx runs fn inside dbc.Tx when one is open, otherwise inside a new transaction.
	InTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if dbc.InTx() {
		return fn(dbc.WithTx(dbc.Tx))
	}
	if r == nil || r.db == nil {
		return errors.New("transaction runner has nil db")
	}
	return r.db.WithContext(dbc.Context()).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}
