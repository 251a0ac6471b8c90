package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/security"
	"labreserve-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager(testSecret, time.Hour)

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@lab.test" && u.Role == domain.UserRoleUser && u.PasswordHash != "secret-pass"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = uuid.New()
		}).Return(nil)

		res, err := svc.SignUp(ctx, service.SignUpRequest{Email: " Ada@Lab.test ", Password: "secret-pass", Name: "Ada"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)

		claims, err := tokens.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.UserID)
		assert.Equal(t, domain.UserRoleUser, claims.Role)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)

		_, err := svc.SignUp(ctx, service.SignUpRequest{Email: "ada@lab.test", Password: "secret-pass", Name: "Ada"})
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("Short password", func(t *testing.T) {
		svc := service.NewAuthService(new(MockUserRepo), tokens)
		_, err := svc.SignUp(ctx, service.SignUpRequest{Email: "ada@lab.test", Password: "short", Name: "Ada"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager(testSecret, time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "ada@lab.test", PasswordHash: string(hash), Role: domain.UserRoleLabManager}

	users := new(MockUserRepo)
	users.On("GetByEmail", mock.Anything, "ada@lab.test").Return(user, nil)
	users.On("GetByEmail", mock.Anything, "nobody@lab.test").Return(nil, domain.ErrNotFound)
	svc := service.NewAuthService(users, tokens)

	res, err := svc.SignIn(ctx, "ADA@lab.test", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)

	_, err = svc.SignIn(ctx, "ada@lab.test", "wrong-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@lab.test", "secret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAdminService_SetRole(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}
	target := &domain.User{ID: uuid.New(), Role: domain.UserRoleUser}

	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.UserRoleLabManager
	})).Return(nil)
	svc := service.NewAdminService(users)

	got, err := svc.SetRole(ctx, admin, target.ID, domain.UserRoleLabManager)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleLabManager, got.Role)

	_, err = svc.SetRole(ctx, admin, admin.UserID, domain.UserRoleUser)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.SetRole(ctx, domain.Actor{UserID: uuid.New(), Role: domain.UserRoleLabManager}, target.ID, domain.UserRoleAdmin)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = svc.SetRole(ctx, admin, target.ID, domain.UserRole("owner"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestMessageService_SendMessage(t *testing.T) {
	ctx := context.Background()
	sender := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleUser}
	recipient := &domain.User{ID: uuid.New()}

	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)
	notes := new(MockNotificationRepo)
	users.On("GetByID", mock.Anything, recipient.ID).Return(recipient, nil)
	msgs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	notes.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == recipient.ID && n.Attributes["sender_id"] == sender.UserID.String()
	})).Return(nil)
	svc := service.NewMessageService(msgs, users, notes)

	msg, err := svc.SendMessage(ctx, sender, recipient.ID, " Bench booking ", "Can we swap slots?")
	require.NoError(t, err)
	assert.Equal(t, "Bench booking", msg.Subject)
	notes.AssertExpectations(t)

	_, err = svc.SendMessage(ctx, sender, sender.UserID, "", "hi")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestNotificationService_Paging(t *testing.T) {
	ctx := context.Background()
	notes := new(MockNotificationRepo)
	userID := uuid.New()
	notes.On("List", mock.Anything, userID, int32(20), int32(20)).Return([]domain.Notification{}, int32(25), nil)
	notes.On("List", mock.Anything, userID, int32(100), int32(0)).Return([]domain.Notification{}, int32(25), nil)
	svc := service.NewNotificationService(notes)

	_, total, err := svc.GetNotifications(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(25), total)

	_, _, err = svc.GetNotifications(ctx, userID, 0, 500)
	require.NoError(t, err)
	notes.AssertExpectations(t)
}
