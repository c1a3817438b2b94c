package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoicehub/internal/auth"
	"invoicehub/internal/invoicing"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

type userService struct {
	repo        storage.UserRepository
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	validator   *invoicing.Validator
	log         zerolog.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo storage.UserRepository, tokens *auth.TokenManager, revocations auth.RevocationStore) UserService {
	return &userService{
		repo:        repo,
		tokens:      tokens,
		revocations: revocations,
		validator:   invoicing.NewValidator(),
		log:         logger.WithComponent("user-service"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}
	if len(req.Password) > maxPasswordBytes {
		verr := invoicing.NewValidationError()
		verr.Add("password", fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
		return nil, fmt.Errorf("%w: %w", ErrValidation, verr)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &dto.CreateUserRequest{
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, MapRepoError(err, "creating user")
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("User registered")
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, &dto.GetUserByEmailRequest{Email: normalizeEmail(req.Email)})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug().Msg("Login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, MapRepoError(err, "loading user for login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Debug().Str("user_id", user.ID.String()).Msg("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate login token: %w", err)
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *userService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	if req.TokenID == "" {
		return ErrUnauthenticated
	}
	if err := s.revocations.Revoke(ctx, req.TokenID, req.ExpiresAt); err != nil {
		return fmt.Errorf("internal error revoking token: %w", err)
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, req *dto.GetUserByIdRequest) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, req)
	if err != nil {
		return nil, MapRepoError(err, "getting user")
	}
	return user, nil
}

// Onboard fills the profile used as the default invoice issuer.
func (s *userService) Onboard(ctx context.Context, req *dto.OnboardRequest) (*models.User, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Address = strings.TrimSpace(req.Address)

	user, err := s.repo.UpdateProfile(ctx, req)
	if err != nil {
		return nil, MapRepoError(err, "updating profile")
	}
	return user, nil
}
