package service

import (
	"context"
	"errors"
	"log"
	"time"

	"reviewhub/internal/email"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthService implements the confirmation-code flow: signup issues a
// code by email, the token endpoint exchanges it for a JWT. There are
// no passwords; the code is the credential and only its bcrypt hash is
// stored.
type AuthService interface {
	SignUp(ctx context.Context, username, emailAddr string) (*models.User, error)
	IssueToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (userID string, err error)
}

type authService struct {
	userRepo  repository.UserRepository
	sender    email.Sender
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sender email.Sender, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		sender:    sender,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// SignUp gets or creates the account for the (username, email) pair
// and emails a fresh confirmation code. Re-signing up with the same
// pair simply re-sends a code; claiming a taken username or email with
// a different pairing fails.
func (s *authService) SignUp(ctx context.Context, username, emailAddr string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != emailAddr {
			return nil, ErrNameInUse
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := s.userRepo.FindByEmail(ctx, emailAddr); err == nil {
			return nil, ErrEmailInUse
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &models.User{
			Username: username,
			Email:    emailAddr,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, ErrNameInUse
			}
			return nil, err
		}
	default:
		return nil, err
	}

	code := auth.GenerateConfirmationCode()
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, err
	}
	user.ConfirmationCode = hash
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	// Delivery is best-effort; a lost email is fixed by signing up again.
	if s.sender != nil {
		go func(to, name, plaintext string) {
			if err := s.sender.SendConfirmationCode(to, name, plaintext); err != nil {
				log.Printf("confirmation email to %s failed: %v", to, err)
			}
		}(user.Email, user.Username, code)
	}

	return user, nil
}

// IssueToken exchanges a valid confirmation code for an access token.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if user.ConfirmationCode == "" || auth.VerifyCode(user.ConfirmationCode, code) != nil {
		return "", ErrInvalidCode
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses the token and returns the user ID it was issued
// for. Role is deliberately not trusted from the token; the middleware
// reloads the user row so role changes apply immediately.
func (s *authService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
