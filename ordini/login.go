package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type LoginService struct {
	store         *GormStore
	authenticator *auth.Authenticator
}

func NewLoginService(store *GormStore, authenticator *auth.Authenticator) *LoginService {
	return &LoginService{store: store, authenticator: authenticator}
}

func (l *LoginService) Login(ctx context.Context, email, password string) (api.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "LoginService.Login")
	defer span.End()

	u, err := l.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return api.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return api.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "login with wrong password", slog.String("user_id", u.ID))
		return api.LoginResponse{}, ErrInvalidCredentials
	}

	return l.authenticator.Issue(u.toAPI())
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}
