package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/travelsite/internal/models"
	"github.com/atinyakov/travelsite/internal/repository"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

// UserRepository defines the persistence operations required by AuthService.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// Admin is the bootstrap account accepted when no stored user matches.
type Admin struct {
	Username string
	Password string
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token string
	Role  string
}

// AuthService issues bearer tokens and manages admin accounts.
type AuthService struct {
	repo      UserRepository
	tokens    *jwtauth.JWTAuth
	ttl       time.Duration
	adminName string
	adminHash []byte
	now       func() time.Time
}

// NewAuthService constructs an AuthService. tokens signs the issued JWTs,
// ttl bounds their lifetime.
func NewAuthService(repo UserRepository, tokens *jwtauth.JWTAuth, ttl time.Duration, admin Admin) (*AuthService, error) {
	s := &AuthService{repo: repo, tokens: tokens, ttl: ttl, adminName: admin.Username, now: time.Now}
	if admin.Username != "" && admin.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(admin.Password), hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.adminHash = h
	}
	return s, nil
}

// Login checks the credentials against stored users first and then the
// bootstrap admin.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fail(ErrInvalidInput, "Missing username or password")
	}

	var (
		role   string
		userID string
	)
	u, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if len(u.PasswordHash) == 0 || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
			return nil, fail(ErrInvalidCredentials, "Invalid credentials")
		}
		role, userID = u.Role, u.ID
	case errors.Is(err, repository.ErrNotFound):
		if s.adminHash == nil || username != s.adminName ||
			bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) != nil {
			return nil, fail(ErrInvalidCredentials, "Invalid credentials")
		}
		role = "admin"
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	claims := map[string]interface{}{
		"username": username,
		"role":     role,
		"user_id":  userID,
	}
	jwtauth.SetIssuedAt(claims, s.now())
	jwtauth.SetExpiry(claims, s.now().Add(s.ttl))
	_, token, err := s.tokens.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, Role: role}, nil
}

// ListUsers returns every account without password hashes.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser registers a new account. Username, email and password are required.
func (s *AuthService) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fail(ErrInvalidInput, "Missing required fields")
	}
	if err := s.checkUnique(ctx, in.Username, in.Email, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: hash,
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, duplicateOr(err)
	}
	u.PasswordHash = nil
	return &u, nil
}

// UpdateUser applies the non-empty fields of in to the account with id.
func (s *AuthService) UpdateUser(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}

	var newName, newEmail string
	if in.Username != "" && in.Username != u.Username {
		newName = in.Username
	}
	if in.Email != "" && in.Email != u.Email {
		newEmail = in.Email
	}
	if err := s.checkUnique(ctx, newName, newEmail, id); err != nil {
		return nil, err
	}

	if newName != "" {
		u.Username = newName
	}
	if newEmail != "" {
		u.Email = newEmail
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if in.Role != "" {
		u.Role = in.Role
	}

	if err := s.repo.UpdateUser(ctx, *u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrNotFound, "User not found")
		}
		return nil, duplicateOr(err)
	}
	u.PasswordHash = nil
	return u, nil
}

// DeleteUser removes the account with id.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "User not found")
	}
	return err
}

// checkUnique tests the non-empty values against other accounts.
func (s *AuthService) checkUnique(ctx context.Context, username, email, exceptID string) error {
	if username != "" {
		taken, err := s.repo.UsernameTaken(ctx, username, exceptID)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return fail(ErrConflict, "Username already exists")
		}
	}
	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return fail(ErrConflict, "Email already exists")
		}
	}
	return nil
}

// duplicateOr covers the race between checkUnique and the write.
func duplicateOr(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	if strings.Contains(err.Error(), "email") {
		return fail(ErrConflict, "Email already exists")
	}
	return fail(ErrConflict, "Username already exists")
}
