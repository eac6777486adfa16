package usecase

import (
	"context"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
)

// LoginResult carries the issued token and the authenticated actor.
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	Actor       *domain.Actor `json:"actor"`
}

// AuthUseCase authenticates actors and issues access tokens. Failed logins
// always report the same AuthError regardless of whether the email or the
// password was wrong.
type AuthUseCase struct {
	actors    ports.ActorRepository
	tokens    ports.TokenService
	passwords ports.PasswordService
	log       logger.Logger
}

// NewAuthUseCase creates an auth use case.
func NewAuthUseCase(
	actors ports.ActorRepository,
	tokens ports.TokenService,
	passwords ports.PasswordService,
	log logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		actors:    actors,
		tokens:    tokens,
		passwords: passwords,
		log:       log,
	}
}

// Login verifies credentials and returns an access token for the actor.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	actor, err := uc.actors.FindByEmail(ctx, email)
	if err != nil {
		uc.log.Warn(ctx, "login failed", map[string]interface{}{"email": email})
		return nil, &domain.AuthError{}
	}
	if err := uc.passwords.Compare(actor.PasswordHash, password); err != nil {
		uc.log.Warn(ctx, "login failed", map[string]interface{}{"email": email})
		return nil, &domain.AuthError{}
	}
	token, err := uc.tokens.GenerateAccessToken(ports.TokenClaims{
		ActorID: actor.ID,
		Role:    actor.Role,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, Actor: actor}, nil
}
