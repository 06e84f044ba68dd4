package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/auth"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/mail"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
)

// reservedUsername collides with the /users/me route and is rejected in any
// letter case.
const reservedUsername = "me"

const mailSendTimeout = 30 * time.Second

type AuthService interface {
	// Signup creates the user on first call and is a code resend on repeat
	// calls with the same (email, username) pair.
	Signup(ctx context.Context, email, username string) error
	// GetToken exchanges a confirmation code for a signed access token. The
	// code is consumed on success.
	GetToken(ctx context.Context, username, code string) (string, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	codes          *auth.CodeGenerator
	mailer         mail.Mailer
	logger         *slog.Logger
	jwtSecret      string
	accessTokenTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *auth.CodeGenerator,
	mailer mail.Mailer,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		codes:          codes,
		mailer:         mailer,
		logger:         logger,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// ValidateUsername enforces the username contract shared by signup and user
// management: the allowed character set and the reserved value "me".
func ValidateUsername(username string) error {
	if strings.EqualFold(username, reservedUsername) {
		return NewValidationError("username", "this username is reserved")
	}
	if !usernamePattern.MatchString(username) {
		return NewValidationError("username", "may contain only letters, digits and _.@+- characters")
	}
	return nil
}

func (s *authService) Signup(ctx context.Context, email, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	user, err := s.userRepo.FindByPair(ctx, email, username)
	switch {
	case err == nil:
		// known pair, idempotent resend
	case repository.IsNotFound(err):
		user, err = s.register(ctx, email, username)
		if err != nil {
			return err
		}
	default:
		return err
	}

	code := s.codes.Make(user)
	user.ConfirmationCode = code
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Fire and forget: delivery failure must not fail the signup request.
	go s.dispatchCode(user.Email, code)
	return nil
}

// register creates the user after checking that neither field belongs to a
// different pairing. The unique constraints stay the source of truth under
// concurrent signups.
func (s *authService) register(ctx context.Context, email, username string) (*models.User, error) {
	verr := &ValidationError{Fields: map[string][]string{}}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		verr.Add("username", "a user with this username already exists")
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		verr.Add("email", "a user with this email already exists")
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			// lost a race with a concurrent signup for the same fields
			return nil, NewValidationError("username", "a user with this username or email already exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) dispatchCode(email, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, email,
		"ReviewHub confirmation code",
		"Your confirmation code: "+code,
	)
	if err != nil {
		s.logger.Warn("failed to send confirmation code", "email", email, "error", err)
	}
}

func (s *authService) GetToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}

	// The stored code gates single use; the generator binds the code to the
	// user's identity state and the issue time.
	if user.ConfirmationCode == "" || code != user.ConfirmationCode || !s.codes.Check(user, code) {
		return "", NewValidationError("confirmation_code", "invalid or expired confirmation code")
	}

	user.ConfirmationCode = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.accessTokenTTL).Unix(),
		"iat":      time.Now().Unix(),
		"type":     "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
