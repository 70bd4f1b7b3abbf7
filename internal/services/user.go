package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// Error variables
var (
	ErrCredentialsRequired = fmt.Errorf("%w: username and password are required", common.ErrValidation)
	ErrPasswordRequired    = fmt.Errorf("%w: password is required", common.ErrValidation)
	ErrUserAlreadyExists   = fmt.Errorf("%w: username already exists", common.ErrAlreadyExists)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", common.ErrNotFound)
	ErrNoUsersFound        = fmt.Errorf("%w: no users found", common.ErrNotFound)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, passwordHash string, role models.Role) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// TokenGenerator issues identity tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, identity models.Identity) (string, error)
}

// TokenRevoker invalidates an issued token before it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}

// EventPublisher sends lifecycle events. It may be nil.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// UserService handles accounts: registration, login and self-or-admin
// management.
type UserService struct {
	reader    UserReader
	writer    UserWriter
	tokens    TokenGenerator
	revoker   TokenRevoker
	publisher EventPublisher
}

// NewUserService creates a new UserService instance.
func NewUserService(
	reader UserReader,
	writer UserWriter,
	tokens TokenGenerator,
	revoker TokenRevoker,
	publisher EventPublisher,
) *UserService {
	return &UserService{
		reader:    reader,
		writer:    writer,
		tokens:    tokens,
		revoker:   revoker,
		publisher: publisher,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}
	return string(hash), nil
}

// Register creates a regular user and returns its id.
func (svc *UserService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrCredentialsRequired
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return 0, err
	}
	if user != nil {
		logger.Log.Infow("user already exists", "username", username)
		return 0, ErrUserAlreadyExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := svc.writer.Save(ctx, username, hash, models.RoleUser)
	if errors.Is(err, common.ErrAlreadyExists) {
		// Lost a race with a concurrent registration.
		return 0, ErrUserAlreadyExists
	}
	if err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return 0, err
	}

	event := models.NewEvent(models.EventUserRegistered, id)
	event.Username = username
	svc.publish(ctx, event)

	return id, nil
}

// Login authenticates a user and returns a signed token.
func (svc *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrCredentialsRequired
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("user does not exist", "username", username)
		return "", ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.tokens.Generate(ctx, models.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// Logout revokes the requester's token until it would have expired.
func (svc *UserService) Logout(ctx context.Context, requester models.Identity) error {
	if svc.revoker == nil || requester.TokenID == "" {
		return nil
	}
	if err := svc.revoker.Revoke(ctx, requester.TokenID, requester.ExpiresAt); err != nil {
		logger.Log.Errorw("failed to revoke token", "user_id", requester.ID, "err", err)
		return err
	}
	return nil
}

// GetProfile returns the user named username if the requester may view it.
func (svc *UserService) GetProfile(ctx context.Context, requester models.Identity, username string) (*models.User, error) {
	if err := access.ViewUserProfile(requester, username).Err(); err != nil {
		return nil, err
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "username", username, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := access.ReadUserRecord(requester, user.ID).Err(); err != nil {
		logger.Log.Infow("profile request with a token for another account", "user_id", requester.ID, "username", username)
		return nil, err
	}
	return user, nil
}

// List returns every user. Admin only.
func (svc *UserService) List(ctx context.Context, requester models.Identity) ([]models.User, error) {
	if err := access.ListAllUsers(requester).Err(); err != nil {
		return nil, err
	}

	users, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNoUsersFound
	}
	return users, nil
}

// UpdatePassword replaces the target user's password.
func (svc *UserService) UpdatePassword(ctx context.Context, requester models.Identity, targetID int64, password string) error {
	if err := access.UpdateUserPassword(requester, targetID).Err(); err != nil {
		return err
	}
	if password == "" {
		return ErrPasswordRequired
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	err = svc.writer.UpdatePassword(ctx, targetID, hash)
	if errors.Is(err, common.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to update password", "user_id", targetID, "err", err)
		return err
	}
	return nil
}

// Delete removes the target user. Stored audio files are kept.
func (svc *UserService) Delete(ctx context.Context, requester models.Identity, targetID int64) error {
	if err := access.DeleteUser(requester, targetID).Err(); err != nil {
		return err
	}

	err := svc.writer.Delete(ctx, targetID)
	if errors.Is(err, common.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", targetID, "err", err)
		return err
	}

	// The account is gone; a failed revocation is logged by Logout.
	if requester.ID == targetID {
		_ = svc.Logout(ctx, requester)
	}

	event := models.NewEvent(models.EventUserDeleted, targetID)
	event.ActorID = requester.ID
	svc.publish(ctx, event)

	return nil
}

// EnsureAdmin creates the admin account if no user has that name yet.
// An existing account is left untouched.
func (svc *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user != nil {
		if user.Role != models.RoleAdmin {
			logger.Log.Warnw("bootstrap admin name is taken by a regular user", "username", username)
		}
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	id, err := svc.writer.Save(ctx, username, hash, models.RoleAdmin)
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Log.Infow("admin user created", "id", id, "username", username)
	return nil
}

func (svc *UserService) publish(ctx context.Context, event models.Event) {
	publish(ctx, svc.publisher, event)
}

// publish logs publisher failures instead of returning them.
func publish(ctx context.Context, publisher EventPublisher, event models.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Log.Warnw("failed to publish event", "type", event.Type, "event_id", event.ID, "err", err)
	}
}
