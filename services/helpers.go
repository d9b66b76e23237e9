package services

import (
	"errors"

	"restaurant-service/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// isUniqueViolation matches Postgres unique violations. database.Connect
// enables TranslateError, so SQLSTATE 23505 arrives as gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// validPrice reports whether p fits a positive decimal(10,2).
func validPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(models.MaxAmount) && p.Equal(p.Round(2))
}

// normalizePage clamps page and limit to the accepted range.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Page size bounds shared by every list endpoint.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
