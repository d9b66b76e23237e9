package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store exposes the repositories that take part in a transaction.
type Store interface {
	Carts() CartRepository
	Orders() OrderRepository
}

// Transactor runs fn with a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(store Store) error) error
}

// GormTransactor implements Transactor on top of gorm's Transaction.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor.
func NewGormTransactor(db *gorm.DB) Transactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(store Store) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Carts() CartRepository   { return NewGormCartRepository(s.db) }
func (s *gormStore) Orders() OrderRepository { return NewGormOrderRepository(s.db) }
