package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"invoicehub/internal/auth"
	mock_storage "invoicehub/internal/mocks"
	"invoicehub/internal/models"
	"invoicehub/internal/services"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtSecret   = "test-secret-key"
	jwtDuration = 15 * time.Minute
)

var testUserID = uuid.New()

func setupUserServiceTest(t *testing.T) (context.Context, services.UserService, *mock_storage.MockUserRepository, *auth.TokenManager, *auth.MemoryRevocationStore) {
	ctrl := gomock.NewController(t)
	repo := mock_storage.NewMockUserRepository(ctrl)
	tokens := auth.NewTokenManager(jwtSecret, jwtDuration, "invoicehub-test")
	revocations := auth.NewMemoryRevocationStore()
	return context.Background(), services.NewUserService(repo, tokens, revocations), repo, tokens, revocations
}

func TestUserService_Register(t *testing.T) {
	repoErrDbConnectionLost := errors.New("database connection lost")

	tests := []struct {
		name          string
		req           *dto.RegisterRequest
		mockSetup     func(repo *mock_storage.MockUserRepository)
		expectedError error
		errorContains string
	}{
		{
			name: "Success",
			req:  &dto.RegisterRequest{Email: "  Test@Example.com ", Password: "password123"},
			mockSetup: func(repo *mock_storage.MockUserRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *dto.CreateUserRequest) (*models.User, error) {
					assert.Equal(t, "test@example.com", req.Email)
					assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(req.PasswordHash), []byte("password123")))
					return &models.User{ID: testUserID, Email: req.Email, PasswordHash: req.PasswordHash}, nil
				})
			},
		},
		{
			name: "Conflict - Duplicate Email",
			req:  &dto.RegisterRequest{Email: "test@example.com", Password: "password123"},
			mockSetup: func(repo *mock_storage.MockUserRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateEmail)
			},
			expectedError: services.ErrConflict,
		},
		{
			name:          "Validation - Short Password",
			req:           &dto.RegisterRequest{Email: "test@example.com", Password: "short"},
			mockSetup:     func(repo *mock_storage.MockUserRepository) {},
			expectedError: services.ErrValidation,
		},
		{
			name:          "Validation - Password Over 72 Bytes",
			req:           &dto.RegisterRequest{Email: "test@example.com", Password: strings.Repeat("é", 40)},
			mockSetup:     func(repo *mock_storage.MockUserRepository) {},
			expectedError: services.ErrValidation,
		},
		{
			name: "Repository Error",
			req:  &dto.RegisterRequest{Email: "error@example.com", Password: "password123"},
			mockSetup: func(repo *mock_storage.MockUserRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, repoErrDbConnectionLost)
			},
			expectedError: repoErrDbConnectionLost,
			errorContains: "internal error during creating user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, svc, repo, _, _ := setupUserServiceTest(t)
			tt.mockSetup(repo)

			user, err := svc.Register(ctx, tt.req)
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "Expected error %v, got %v", tt.expectedError, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testUserID, user.ID)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: testUserID, Email: "test@example.com", PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		ctx, svc, repo, tokens, _ := setupUserServiceTest(t)
		repo.EXPECT().GetByEmail(gomock.Any(), &dto.GetUserByEmailRequest{Email: "test@example.com"}).Return(stored, nil)

		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "TEST@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, testUserID, resp.User.ID)
		assert.WithinDuration(t, time.Now().Add(jwtDuration), resp.ExpiresAt, 2*time.Second)

		claims, err := tokens.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, testUserID, claims.UserID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctx, svc, repo, _, _ := setupUserServiceTest(t)
		repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(stored, nil)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "test@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		ctx, svc, repo, _, _ := setupUserServiceTest(t)
		repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "password123"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestUserService_Logout(t *testing.T) {
	ctx, svc, _, _, revocations := setupUserServiceTest(t)

	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}))
	revoked, err := revocations.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, svc.Logout(ctx, &dto.LogoutRequest{}), services.ErrUnauthenticated)
}

func TestUserService_Onboard(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctx, svc, repo, _, _ := setupUserServiceTest(t)
		repo.EXPECT().UpdateProfile(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *dto.OnboardRequest) (*models.User, error) {
			assert.Equal(t, "Ada", req.FirstName)
			return &models.User{ID: req.UserId, FirstName: req.FirstName, LastName: req.LastName, Address: req.Address}, nil
		})

		user, err := svc.Onboard(ctx, &dto.OnboardRequest{FirstName: " Ada ", LastName: "Lovelace", Address: "London", UserId: testUserID})
		require.NoError(t, err)
		assert.True(t, user.Onboarded())
	})

	t.Run("BlankFields", func(t *testing.T) {
		ctx, svc, _, _, _ := setupUserServiceTest(t)
		_, err := svc.Onboard(ctx, &dto.OnboardRequest{FirstName: "  ", UserId: testUserID})
		assert.ErrorIs(t, err, services.ErrValidation)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx, svc, repo, _, _ := setupUserServiceTest(t)
	req := &dto.GetUserByIdRequest{ID: testUserID}

	repo.EXPECT().GetByID(gomock.Any(), req).Return(nil, storage.ErrNotFound)
	_, err := svc.GetByID(ctx, req)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
