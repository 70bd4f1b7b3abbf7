package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
	"github.com/sbilibin2017/audio-vault/internal/services"
)

type userMocks struct {
	reader    *services.MockUserReader
	writer    *services.MockUserWriter
	tokens    *services.MockTokenGenerator
	revoker   *services.MockTokenRevoker
	publisher *services.MockEventPublisher
}

func newUserService(t *testing.T) (*services.UserService, userMocks) {
	ctrl := gomock.NewController(t)
	m := userMocks{
		reader:    services.NewMockUserReader(ctrl),
		writer:    services.NewMockUserWriter(ctrl),
		tokens:    services.NewMockTokenGenerator(ctrl),
		revoker:   services.NewMockTokenRevoker(ctrl),
		publisher: services.NewMockEventPublisher(ctrl),
	}
	return services.NewUserService(m.reader, m.writer, m.tokens, m.revoker, m.publisher), m
}

var (
	alice = models.Identity{ID: 1, Username: "alice", Role: models.RoleUser, TokenID: "jti-alice"}
	bob   = models.Identity{ID: 2, Username: "bob", Role: models.RoleUser}
	admin = models.Identity{ID: 99, Username: "root", Role: models.RoleAdmin}
)

func TestUserService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, m := newUserService(t)

		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
		m.writer.EXPECT().
			Save(gomock.Any(), "alice", gomock.Any(), models.RoleUser).
			DoAndReturn(func(ctx context.Context, username, hash string, role models.Role) (int64, error) {
				assert.NotEqual(t, "secret1", hash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")))
				return 1, nil
			})
		m.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, e models.Event) error {
				assert.Equal(t, models.EventUserRegistered, e.Type)
				assert.Equal(t, int64(1), e.UserID)
				assert.Equal(t, "alice", e.Username)
				return nil
			})

		id, err := svc.Register(context.Background(), "alice", "secret1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("already exists", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.User{ID: 1, Username: "alice"}, nil)

		_, err := svc.Register(context.Background(), "alice", "secret1")
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
		assert.ErrorIs(t, err, common.ErrAlreadyExists)
	})

	t.Run("unique violation on save", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
		m.writer.EXPECT().Save(gomock.Any(), "alice", gomock.Any(), models.RoleUser).Return(int64(0), common.ErrAlreadyExists)

		_, err := svc.Register(context.Background(), "alice", "secret1")
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newUserService(t)

		for _, in := range [][2]string{{"", "x"}, {"alice", ""}, {"  ", "x"}} {
			_, err := svc.Register(context.Background(), in[0], in[1])
			assert.ErrorIs(t, err, services.ErrCredentialsRequired)
			assert.ErrorIs(t, err, common.ErrValidation)
		}
	})

	t.Run("reader error", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "eve").Return(nil, errors.New("db error"))

		_, err := svc.Register(context.Background(), "eve", "pass")
		assert.EqualError(t, err, "db error")
	})

	t.Run("publish failure is not returned", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "carol").Return(nil, nil)
		m.writer.EXPECT().Save(gomock.Any(), "carol", gomock.Any(), models.RoleUser).Return(int64(3), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("kafka down"))

		id, err := svc.Register(context.Background(), "carol", "pass")
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 1, Username: "alice", PasswordHash: string(hash), Role: models.RoleUser}

	tests := []struct {
		name      string
		username  string
		password  string
		user      *models.User
		readerErr error
		token     string
		wantErr   error
	}{
		{name: "success", username: "alice", password: "secret1", user: stored, token: "tok"},
		{name: "wrong password", username: "alice", password: "nope", user: stored, wantErr: services.ErrInvalidCredentials},
		{name: "unknown user", username: "ghost", password: "x", wantErr: services.ErrUserNotFound},
		{name: "reader error", username: "alice", password: "x", readerErr: errors.New("db error"), wantErr: errors.New("db error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newUserService(t)
			m.reader.EXPECT().GetByUsername(gomock.Any(), tt.username).Return(tt.user, tt.readerErr)
			if tt.token != "" {
				m.tokens.EXPECT().
					Generate(gomock.Any(), models.Identity{ID: 1, Username: "alice", Role: models.RoleUser}).
					Return(tt.token, nil)
			}

			token, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, common.ErrNotFound) || errors.Is(tt.wantErr, common.ErrUnauthorized) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newUserService(t)
		_, err := svc.Login(context.Background(), "", "")
		assert.ErrorIs(t, err, services.ErrCredentialsRequired)
	})
}

func TestUserService_Logout(t *testing.T) {
	svc, m := newUserService(t)
	exp := time.Now().Add(time.Hour)
	requester := alice
	requester.ExpiresAt = exp

	m.revoker.EXPECT().Revoke(gomock.Any(), "jti-alice", exp).Return(nil)
	assert.NoError(t, svc.Logout(context.Background(), requester))

	m.revoker.EXPECT().Revoke(gomock.Any(), "jti-alice", exp).Return(errors.New("redis down"))
	assert.EqualError(t, svc.Logout(context.Background(), requester), "redis down")

	// Tokens without an id cannot be revoked individually.
	assert.NoError(t, svc.Logout(context.Background(), bob))
}

func TestUserService_GetProfile(t *testing.T) {
	t.Run("non-admin denied before lookup", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.GetProfile(context.Background(), bob, "alice")
		assert.ErrorIs(t, err, common.ErrForbidden)

		var denied *access.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, access.ReasonAccessDenied, denied.Reason)
	})

	t.Run("self", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.User{ID: 1, Username: "alice"}, nil)

		user, err := svc.GetProfile(context.Background(), alice, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("token of a deleted account with the same username", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.User{ID: 7, Username: "alice"}, nil)

		user, err := svc.GetProfile(context.Background(), alice, "alice")
		assert.Nil(t, user)

		var denied *access.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, access.ReasonAccessDenied, denied.Reason)
	})

	t.Run("admin", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.User{ID: 1, Username: "alice"}, nil)

		user, err := svc.GetProfile(context.Background(), admin, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("admin missing user", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		_, err := svc.GetProfile(context.Background(), admin, "ghost")
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})
}

func TestUserService_List(t *testing.T) {
	t.Run("non-admin", func(t *testing.T) {
		svc, _ := newUserService(t)
		_, err := svc.List(context.Background(), alice)

		var denied *access.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, access.ReasonAdminRequired, denied.Reason)
	})

	t.Run("admin", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().List(gomock.Any()).Return([]models.User{{ID: 1}, {ID: 2}}, nil)

		users, err := svc.List(context.Background(), admin)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("empty", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().List(gomock.Any()).Return([]models.User{}, nil)

		_, err := svc.List(context.Background(), admin)
		assert.ErrorIs(t, err, services.ErrNoUsersFound)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestUserService_UpdatePassword(t *testing.T) {
	tests := []struct {
		name      string
		requester models.Identity
		targetID  int64
		password  string
		writeErr  error
		wantWrite bool
		wantErr   error
	}{
		{name: "self", requester: alice, targetID: 1, password: "new", wantWrite: true},
		{name: "admin", requester: admin, targetID: 1, password: "new", wantWrite: true},
		{name: "other user", requester: bob, targetID: 1, password: "new", wantErr: common.ErrForbidden},
		{name: "other user, absent target", requester: bob, targetID: 500, password: "new", wantErr: common.ErrForbidden},
		{name: "empty password", requester: alice, targetID: 1, wantErr: services.ErrPasswordRequired},
		{name: "admin, absent target", requester: admin, targetID: 500, password: "new", wantWrite: true, writeErr: common.ErrNotFound, wantErr: services.ErrUserNotFound},
		{name: "write failure", requester: alice, targetID: 1, password: "new", wantWrite: true, writeErr: errors.New("db error"), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newUserService(t)
			if tt.wantWrite {
				m.writer.EXPECT().UpdatePassword(gomock.Any(), tt.targetID, gomock.Any()).Return(tt.writeErr)
			}

			err := svc.UpdatePassword(context.Background(), tt.requester, tt.targetID, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.writeErr != nil:
				assert.EqualError(t, err, tt.writeErr.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		svc, m := newUserService(t)
		m.writer.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
		m.revoker.EXPECT().Revoke(gomock.Any(), "jti-alice", alice.ExpiresAt).Return(nil)
		m.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, e models.Event) error {
				assert.Equal(t, models.EventUserDeleted, e.Type)
				assert.Equal(t, int64(1), e.UserID)
				assert.Equal(t, int64(1), e.ActorID)
				return nil
			})

		assert.NoError(t, svc.Delete(context.Background(), alice, 1))
	})

	t.Run("self, revocation failure does not undo the delete", func(t *testing.T) {
		svc, m := newUserService(t)
		m.writer.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
		m.revoker.EXPECT().Revoke(gomock.Any(), "jti-alice", alice.ExpiresAt).Return(errors.New("redis down"))
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), alice, 1))
	})

	t.Run("admin deleting another account keeps own token", func(t *testing.T) {
		svc, m := newUserService(t)
		m.writer.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), models.Identity{ID: 99, Username: "root", Role: models.RoleAdmin, TokenID: "jti-root"}, 1))
	})

	t.Run("other user", func(t *testing.T) {
		svc, _ := newUserService(t)
		err := svc.Delete(context.Background(), bob, 1)

		var denied *access.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, access.ReasonOwnAccountOnly, denied.Reason)
	})

	t.Run("repeated delete is not found each time", func(t *testing.T) {
		svc, m := newUserService(t)
		m.writer.EXPECT().Delete(gomock.Any(), int64(5)).Return(common.ErrNotFound).Times(2)

		assert.ErrorIs(t, svc.Delete(context.Background(), admin, 5), services.ErrUserNotFound)
		assert.ErrorIs(t, svc.Delete(context.Background(), admin, 5), services.ErrUserNotFound)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "root").Return(nil, nil)
		m.writer.EXPECT().Save(gomock.Any(), "root", gomock.Any(), models.RoleAdmin).Return(int64(1), nil)

		assert.NoError(t, svc.EnsureAdmin(context.Background(), "root", "toor"))
	})

	t.Run("exists", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "root").Return(&models.User{ID: 1, Role: models.RoleAdmin}, nil)

		assert.NoError(t, svc.EnsureAdmin(context.Background(), "root", "toor"))
	})

	t.Run("not configured", func(t *testing.T) {
		svc, _ := newUserService(t)
		assert.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	})

	t.Run("reader error", func(t *testing.T) {
		svc, m := newUserService(t)
		m.reader.EXPECT().GetByUsername(gomock.Any(), "root").Return(nil, errors.New("db error"))

		assert.EqualError(t, svc.EnsureAdmin(context.Background(), "root", "toor"), "db error")
	})
}

func TestUserService_NilCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := services.NewMockUserReader(ctrl)
	writer := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(reader, writer, nil, nil, nil)

	reader.EXPECT().GetByUsername(gomock.Any(), "dave").Return(nil, nil)
	writer.EXPECT().Save(gomock.Any(), "dave", gomock.Any(), models.RoleUser).Return(int64(4), nil)

	id, err := svc.Register(context.Background(), "dave", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.NoError(t, svc.Logout(context.Background(), alice))
}
