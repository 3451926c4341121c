package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
)

func TestProductRepository_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewProductRepository()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, description, price, stock, category_id, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE`)).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "price", "stock", "category_id", "created_at", "updated_at",
		}).AddRow("prod-1", "Widget", "A widget", "19.99", 7, "cat-1", now, now))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	p, err := repo.GetForUpdate(context.Background(), tx, "prod-1")
	if err != nil {
		t.Fatalf("GetForUpdate failed: %v", err)
	}
	if p.Stock != 7 {
		t.Errorf("expected stock 7, got %d", p.Stock)
	}
	if want := decimal.RequireFromString("19.99"); !p.Price.Equal(want) {
		t.Errorf("expected price 19.99, got %s", p.Price)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProductRepository_AdjustStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewProductRepository()

	mock.ExpectExec(`UPDATE products SET stock = stock \+ \$2`).
		WithArgs("prod-1", -3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AdjustStock(context.Background(), db, "prod-1", -3); err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}

	// missing product
	mock.ExpectExec(`UPDATE products SET stock = stock \+ \$2`).
		WithArgs("prod-gone", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AdjustStock(context.Background(), db, "prod-gone", 2)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewProductRepository()

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs("prod-missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "price", "stock", "category_id", "created_at", "updated_at",
		}))

	_, err = repo.GetByID(context.Background(), db, "prod-missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE products`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(context.Background(), `UPDATE products SET stock = stock + 1`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
