package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/mailer"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

// UserService covers registration, login, email verification and profile
// management. Identity issuance lives here; identity verification is the
// auth package's middleware.
type UserService struct {
	db      *sql.DB
	users   *repository.UserRepository
	tokens  *auth.TokenIssuer
	mail    mailer.Sender
	baseURL string
	logger  *slog.Logger
}

func NewUserService(
	db *sql.DB,
	users *repository.UserRepository,
	tokens *auth.TokenIssuer,
	mail mailer.Sender,
	baseURL string,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		db:      db,
		users:   users,
		tokens:  tokens,
		mail:    mail,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Register creates an unverified account and emails a verification link.
// Email delivery is best-effort; the account exists either way.
func (s *UserService) Register(ctx context.Context, name, email, password string, isAdmin bool) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.NewValidationError("body", "name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, s.db, email); err == nil {
		return nil, apperr.ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, s.db, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueEmailToken(user.ID)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/api/auth/verify-email/%s", s.baseURL, token)
	go func() {
		if err := s.mail.Send(user.Email, "Please verify your email address",
			"Click this link to verify your email address: "+link); err != nil {
			s.logger.Error("verification email failed", "user_id", user.ID, "error", err)
		}
	}()

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues an access token carrying the user id
// and admin flag. Unverified accounts cannot log in.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, s.db, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", apperr.NewValidationError("credentials", "invalid credentials")
	}
	if err != nil {
		return "", err
	}

	if !user.IsVerified {
		return "", apperr.NewValidationError("email", "please verify your email first")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.NewValidationError("credentials", "invalid credentials")
	}

	return s.tokens.IssueAccessToken(user.ID, user.IsAdmin)
}

// VerifyEmail marks the account behind a verification token as verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.VerifyEmailToken(token)
	if err != nil {
		return apperr.NewValidationError("token", "invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	user.IsVerified = true
	return s.users.Update(ctx, s.db, user)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, s.db, userID)
}

// UserPatch carries optional profile updates.
type UserPatch struct {
	Name     string
	Email    string
	Password string
	IsAdmin  *bool
}

// UpdateProfile applies a patch to the caller's own account. Email changes
// are checked for uniqueness.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch UserPatch) error {
	return s.applyPatch(ctx, userID, patch, false)
}

func (s *UserService) DeleteProfile(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, s.db, userID)
}

// --- admin operations ---

func (s *UserService) ListUsers(ctx context.Context, caller auth.Identity) ([]*models.User, error) {
	if !caller.IsAdmin {
		return nil, apperr.ErrForbidden
	}
	return s.users.List(ctx, s.db)
}

func (s *UserService) GetUser(ctx context.Context, caller auth.Identity, id string) (*models.User, error) {
	if !caller.IsAdmin {
		return nil, apperr.ErrForbidden
	}
	return s.users.GetByID(ctx, s.db, id)
}

func (s *UserService) UpdateUser(ctx context.Context, caller auth.Identity, id string, patch UserPatch) error {
	if !caller.IsAdmin {
		return apperr.ErrForbidden
	}
	return s.applyPatch(ctx, id, patch, true)
}

func (s *UserService) DeleteUser(ctx context.Context, caller auth.Identity, id string) error {
	if !caller.IsAdmin {
		return apperr.ErrForbidden
	}
	return s.users.Delete(ctx, s.db, id)
}

func (s *UserService) applyPatch(ctx context.Context, userID string, patch UserPatch, allowAdminFlag bool) error {
	user, err := s.users.GetByID(ctx, s.db, userID)
	if err != nil {
		return err
	}

	if patch.Email != "" && patch.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, s.db, patch.Email); err == nil {
			return apperr.ErrEmailTaken
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		user.Email = patch.Email
	}
	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	if allowAdminFlag && patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}

	return s.users.Update(ctx, s.db, user)
}
