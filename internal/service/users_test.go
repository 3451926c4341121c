package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/config"
	"github.com/sagarchy-05/ecommerce-backend/internal/mailer"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

var userTestColumns = []string{
	"id", "name", "email", "password", "is_admin", "is_verified", "created_at",
}

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	tokens := auth.NewTokenIssuer(config.AuthConfig{
		JWTSecret:   "test-secret",
		EmailSecret: "test-email-secret",
		TokenTTL:    time.Hour,
		EmailTTL:    time.Minute,
	})

	svc := NewUserService(
		db,
		repository.NewUserRepository(),
		tokens,
		mailer.NopSender{},
		"http://localhost:8080",
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, mock, func() { db.Close() }
}

func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "New User", "new@example.com", sqlmock.AnyArg(),
			false, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Register(context.Background(), "New User", "new@example.com", "password123", false)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.IsVerified {
		t.Error("expected a freshly registered account to be unverified")
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored without hashing")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow("user-1", "Existing", "taken@example.com", "hash", false, true, time.Now()))

	_, err := svc.Register(context.Background(), "Someone", "taken@example.com", "password123", false)
	if err != apperr.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	verifiedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userTestColumns).
			AddRow("user-1", "User", "user@example.com", string(hash), false, true, time.Now())
	}

	t.Run("success", func(t *testing.T) {
		svc, mock, done := newUserService(t)
		defer done()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("user@example.com").
			WillReturnRows(verifiedRow())

		token, err := svc.Login(context.Background(), "user@example.com", "correct-password")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if token == "" {
			t.Error("expected a signed token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock, done := newUserService(t)
		defer done()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("user@example.com").
			WillReturnRows(verifiedRow())

		_, err := svc.Login(context.Background(), "user@example.com", "wrong")
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unverified account", func(t *testing.T) {
		svc, mock, done := newUserService(t)
		defer done()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("user@example.com").
			WillReturnRows(sqlmock.NewRows(userTestColumns).
				AddRow("user-1", "User", "user@example.com", string(hash), false, false, time.Now()))

		_, err := svc.Login(context.Background(), "user@example.com", "correct-password")
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, mock, done := newUserService(t)
		defer done()

		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestVerifyEmail(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	token, err := svc.tokens.IssueEmailToken("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow("user-1", "User", "user@example.com", "hash", false, false, time.Now()))
	mock.ExpectExec(`UPDATE users`).
		WithArgs("user-1", "User", "user@example.com", "hash", false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), "garbage"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for bad token, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
