package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/domain"
)

type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	GetUser(ctx context.Context, id int) (domain.User, error)
}

// SessionStore tracks the signed-in user. One session per deployment; the
// intended usage is a single user on a single device.
type SessionStore interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	SetCurrentUser(ctx context.Context, user domain.User) error
	Clear(ctx context.Context) error
}

type UserService struct {
	users    UserStore
	sessions SessionStore
	carts    CartStore
	clock    clock.Clock
}

func NewUserService(users UserStore, sessions SessionStore, carts CartStore, clk clock.Clock) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		carts:    carts,
		clock:    clk,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if len(username) < domain.MinUsernameLen {
		return domain.User{}, domain.ErrUsernameTooShort
	}
	if !domain.ValidEmail(email) {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(in.Password) < domain.MinPasswordLen {
		return domain.User{}, domain.ErrPasswordTooShort
	}

	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashPassword(in.Password),
		Role:         domain.RoleUser,
		CreatedAt:    s.clock.Now(),
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.sessions.SetCurrentUser(ctx, created); err != nil {
		return domain.User{}, err
	}
	return created, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := s.sessions.SetCurrentUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Logout clears the session and the cart, matching the original client.
func (s *UserService) Logout(ctx context.Context) error {
	user, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user != nil {
		if err := s.carts.SaveCart(ctx, user.ID, domain.Cart{}); err != nil {
			return err
		}
	}
	return s.sessions.Clear(ctx)
}

func (s *UserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.sessions.CurrentUser(ctx)
}

// Passwords are stored as hex(salt) + "$" + hex(sha256(salt+password)).
// Plaintext never reaches a store.
func hashPassword(password string) string {
	salt := make([]byte, 8)
	_, _ = rand.Read(salt)
	sum := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:])
}

func checkPassword(stored, password string) bool {
	saltHex, sumHex, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(append(salt, []byte(password)...))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(sumHex)) == 1
}
