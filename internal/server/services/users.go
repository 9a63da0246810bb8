package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/server/auth"
	sc "github.com/sterilpoint/protokol/internal/server/config"
	"github.com/sterilpoint/protokol/internal/server/repositories/repomanager"
)

// UserService owns operator accounts and login.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	config *sc.Config
	log    logging.Logger
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *UserService {
	return &UserService{db: db, repos: repos, config: config, log: log.With("module", "users")}
}

// Login verifies the credentials and returns a signed access token. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return "", common.ErrorUnauthorized
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", common.ErrorUnauthorized
	}
	return auth.GenerateToken(user.ID, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
}

// VerifyToken resolves a bearer token to a user ID.
func (s *UserService) VerifyToken(token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, []byte(s.config.SecretKey))
	if err != nil {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

// EnsureAdmin creates the bootstrap operator account when it does not exist
// yet. Called once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context) error {
	repo := s.repos.Users(s.db)
	_, err := repo.GetByUsername(ctx, s.config.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     s.config.AdminUsername,
		PasswordHash: string(hash),
	}
	if err := repo.Create(ctx, user); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	s.log.Info(ctx, "bootstrap admin created", "username", user.Username)
	return nil
}
