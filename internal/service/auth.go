package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/projetgotham/gotham/internal/models"
	"github.com/projetgotham/gotham/internal/rowstore"
)

// AuthService implements account creation and credential checks
// against the users table.
type AuthService struct {
	store RowStore
	cache RowCache
	log   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewAuthService constructs an AuthService over the given store and
// cache.
func NewAuthService(store RowStore, cache RowCache, log *zap.Logger) *AuthService {
	return &AuthService{
		store: store,
		cache: cache,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateUserInput carries the fields of a registration request.
// Optional fields stay empty when not provided; values are raw cell
// strings, like everything else in the sheet.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
	Gender   string
	Age      string
	Height   string
}

// CreateUser registers a new user. The username must not already be
// present; the match is case-sensitive against the raw stored value.
// The password is stored as a bcrypt hash and the account starts
// active.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	rows, err := readThrough(ctx, s.cache, s.store, rowstore.TableUsers)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r["username"] == in.Username {
			return ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = "user"
	}

	row := models.Row{
		"user_id":       s.newID(),
		"username":      in.Username,
		"password_hash": string(hash),
		"role":          role,
		"is_active":     "true",
		"created_at":    s.now().UTC().Format(time.RFC3339),
	}
	if in.Gender != "" {
		row["gender"] = in.Gender
	}
	if in.Age != "" {
		row["age"] = in.Age
	}
	if in.Height != "" {
		row["height"] = in.Height
	}

	if err := s.store.Append(ctx, rowstore.TableUsers, row); err != nil {
		return err
	}
	s.cache.Invalidate(rowstore.TableUsers)

	s.log.Info("user created",
		zap.String("user_id", row["user_id"]),
		zap.String("username", in.Username),
	)
	return nil
}

// Login verifies a username/password pair. It fails with
// ErrInvalidCredentials when the username is absent or the password
// does not match, and with ErrUserInactive when the account's active
// flag is not truthy.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	rows, err := readThrough(ctx, s.cache, s.store, rowstore.TableUsers)
	if err != nil {
		return models.User{}, err
	}

	for _, r := range rows {
		if r["username"] != username {
			continue
		}
		u := models.UserFromRow(r)
		if !u.Active {
			return models.User{}, ErrUserInactive
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return models.User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}
