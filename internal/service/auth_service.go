package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/cache"
	"github.com/fixline/homemart/internal/platform/mailer"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/internal/utils"
	"github.com/fixline/homemart/pkg/auth"
	"github.com/fixline/homemart/pkg/config"
	"github.com/fixline/homemart/pkg/logger"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) error
	Login(ctx context.Context, req *domain.LoginRequest) error
	VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.TokenPair, error)
	Refresh(ctx context.Context, presentedToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, presentedToken string) error
}

type authService struct {
	users    postgres.UsersRepo
	otps     postgres.OTPRepo
	refresh  postgres.RefreshRepo
	mailer   mailer.Service
	cooldown cache.Store
	config   *config.Config

	// now is swappable so expiry behavior is testable with a fake clock.
	now func() time.Time
}

func NewAuthService(
	users postgres.UsersRepo,
	otps postgres.OTPRepo,
	refresh postgres.RefreshRepo,
	mailer mailer.Service,
	cooldown cache.Store,
	config *config.Config,
) AuthService {
	return &authService{
		users:    users,
		otps:     otps,
		refresh:  refresh,
		mailer:   mailer,
		cooldown: cooldown,
		config:   config,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) error {
	email := utils.NormalizeEmail(req.Email)
	v := domain.NewValidationError()
	if !utils.IsValidEmail(email) {
		v.Add("email", "invalid email format")
	}
	if req.FullName == "" {
		v.Add("full_name", "is required")
	}
	if !v.Empty() {
		return v
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && existing.IsVerified {
		return domain.FieldError("email", "already registered")
	}
	if existing == nil {
		if _, err := s.users.Create(ctx, email, req.FullName, domain.RoleCustomer); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	}

	return s.issueChallenge(ctx, email, domain.OTPRegister)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) error {
	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		return domain.FieldError("email", "invalid email format")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsVerified {
		// Don't reveal whether the account exists.
		return domain.ErrInvalidCredentials
	}

	return s.issueChallenge(ctx, email, domain.OTPLogin)
}

// issueChallenge creates a fresh challenge superseding any prior unconsumed
// one, and mails the code. Mail failure is logged but does not fail the
// request; the code was persisted and can be re-requested.
func (s *authService) issueChallenge(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	if s.cooldown != nil {
		key := fmt.Sprintf("otp:cooldown:%s:%s", purpose, email)
		active, err := s.cooldown.Cooldown(ctx, key, s.config.OTP.ResendCooldown)
		if err != nil {
			logger.WarnContext(ctx, "OTP cooldown check failed", "error", err)
		} else if active {
			return domain.ErrRateLimited
		}
	}

	code, err := generateCode(s.config.OTP.Length)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := argon2id.CreateHash(code, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	expiresAt := s.now().Add(s.config.OTP.TTL)
	if err := s.otps.CreateChallenge(ctx, email, purpose, codeHash, expiresAt); err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	if err := s.mailer.SendOTP(email, code, string(purpose)); err != nil {
		logger.ErrorContext(ctx, "Failed to send OTP email", "error", err, "email", email)
	}

	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.TokenPair, error) {
	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) || req.OTP == "" {
		return nil, domain.FieldError("email", "email and otp are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ch, err := s.otps.Latest(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if ch == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if s.now().After(ch.ExpiresAt) {
		return nil, domain.ErrExpired
	}
	if ch.Attempts >= s.config.OTP.MaxAttempts {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.OTP, ch.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare code: %w", err)
	}
	if !match {
		if err := s.otps.BumpAttempts(ctx, ch.ID); err != nil {
			logger.WarnContext(ctx, "Failed to bump OTP attempts", "error", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	// Exactly one verification may succeed per challenge.
	consumed, err := s.otps.Consume(ctx, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}
	if !consumed {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.users.MarkVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
	}

	return s.issueTokens(ctx, user, uuid.NewString())
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User, family string) (*domain.TokenPair, error) {
	accessToken, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := s.now().Add(s.config.Auth.RefreshTokenTTL)
	if err := s.refresh.Create(ctx, user.ID, hashToken(refreshToken), family, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
		User:         user.ToUserInfo(),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, presentedToken string) (*domain.TokenPair, error) {
	if presentedToken == "" {
		return nil, domain.ErrUnauthorized
	}
	tokenHash := hashToken(presentedToken)

	rotated, err := s.refresh.Rotate(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if rotated == nil {
		// Either unknown, expired, or already rotated. An already-rotated
		// token means the credential leaked: kill the whole family.
		existing, err := s.refresh.FindByHash(ctx, tokenHash)
		if err == nil && existing != nil && existing.RotatedAt != nil {
			logger.WarnContext(ctx, "Refresh token reuse detected, revoking family",
				"user_id", existing.UserID, "family", existing.Family)
			if err := s.refresh.RevokeFamily(ctx, existing.Family); err != nil {
				logger.ErrorContext(ctx, "Failed to revoke token family", "error", err)
			}
		}
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, rotated.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	return s.issueTokens(ctx, user, rotated.Family)
}

func (s *authService) Logout(ctx context.Context, presentedToken string) error {
	if presentedToken == "" {
		return nil
	}
	existing, err := s.refresh.FindByHash(ctx, hashToken(presentedToken))
	if err != nil {
		return fmt.Errorf("failed to find refresh token: %w", err)
	}
	if existing == nil {
		return nil
	}
	return s.refresh.RevokeFamily(ctx, existing.Family)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateCode(length int) (string, error) {
	// Rejection sampling: bytes >= 250 are discarded so every digit stays
	// equally likely (256 is not a multiple of 10).
	const digits = "0123456789"
	const limit = 250
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, digits[b%10])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
