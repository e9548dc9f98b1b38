package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caseboard/visit-scheduler/internal/config"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	devSubject        = "dev"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrTokenExpired    = errors.New("token expired")
)

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	userRepo     repository.UserRepository
	tokenRepo    repository.APITokenRepository
}

type SessionData struct {
	UserID string `json:"user_id"`
}

func NewAuthService(
	ctx context.Context,
	cfg config.Config,
	userRepo repository.UserRepository,
	tokenRepo repository.APITokenRepository,
) (*AuthService, error) {
	service := &AuthService{
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
	}

	if cfg.OIDCIssuer == "" {
		slog.Warn("OIDC not configured, only dev login is available")
		return service, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	service.oauthConfig = &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	service.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	return service, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.User, error) {
	if service.oauthConfig == nil {
		return models.User{}, errors.New("OIDC not configured")
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.User{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.User{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.User{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.User{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionUser(ctx, claims.Subject, claims.Email, displayName, claims.Picture)
}

// DevLogin signs in as a fixed local coordinator. Only offered while OIDC is
// not configured.
func (service *AuthService) DevLogin(ctx context.Context) (models.User, error) {
	if service.OIDCConfigured() {
		return models.User{}, errors.New("dev login is disabled when OIDC is configured")
	}

	user, err := service.provisionUser(ctx, devSubject, "dev@localhost", "Dev Admin", "")
	if err != nil {
		return models.User{}, err
	}
	if user.Role != models.RoleAdmin {
		if err := service.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return models.User{}, fmt.Errorf("promoting dev user: %w", err)
		}
		user.Role = models.RoleAdmin
	}
	return user, nil
}

// provisionUser finds the user by OIDC subject or creates one. The first
// user ever created becomes an admin.
func (service *AuthService) provisionUser(ctx context.Context, subject, email, name, avatarURL string) (models.User, error) {
	existingUser, err := service.userRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		if err := service.userRepo.UpdateProfile(ctx, existingUser.ID, name, email, avatarURL); err != nil {
			slog.Warn("failed to update user profile on login", "error", err)
		}
		existingUser.Name = name
		existingUser.Email = email
		existingUser.AvatarURL = avatarURL
		return existingUser, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}

	userCount, err := service.userRepo.Count(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("counting users: %w", err)
	}

	role := models.RoleMember
	if userCount == 0 {
		role = models.RoleAdmin
	}

	created, err := service.userRepo.Create(ctx, models.User{
		OIDCSubject: subject,
		Email:       email,
		Name:        name,
		AvatarURL:   avatarURL,
		Role:        role,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("provisioned new user", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, userID string) error {
	encoded, err := json.Marshal(SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentUser(r *http.Request) (models.User, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.userRepo.FindByID(r.Context(), session.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

// AuthenticateToken resolves a raw bearer token to its owner.
func (service *AuthService) AuthenticateToken(ctx context.Context, rawToken string) (models.User, models.APIToken, error) {
	if rawToken == "" {
		return models.User{}, models.APIToken{}, ErrUnauthenticated
	}

	token, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, models.APIToken{}, ErrUnauthenticated
	}
	if err != nil {
		return models.User{}, models.APIToken{}, err
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return models.User{}, models.APIToken{}, ErrTokenExpired
	}

	user, err := service.userRepo.FindByID(ctx, token.CreatedByUserID)
	if err != nil {
		return models.User{}, models.APIToken{}, fmt.Errorf("finding token owner: %w", err)
	}
	return user, token, nil
}

type TokenInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Scope     string `json:"scope" validate:"omitempty,oneof=api intake"`
	ExpiresIn string `json:"expiresIn"`
}

// CreateToken issues a new API token. The raw token is only ever returned
// here; the database keeps its hash.
func (service *AuthService) CreateToken(ctx context.Context, userID string, input TokenInput) (models.APIToken, string, error) {
	if err := validateStruct(input); err != nil {
		return models.APIToken{}, "", err
	}

	token := models.APIToken{
		Name:            strings.TrimSpace(input.Name),
		Scope:           input.Scope,
		CreatedByUserID: userID,
	}
	if input.ExpiresIn != "" {
		lifetime, err := time.ParseDuration(input.ExpiresIn)
		if err != nil || lifetime <= 0 {
			return models.APIToken{}, "", newValidationError("expiresIn", "must be a positive duration such as 720h")
		}
		expiresAt := time.Now().Add(lifetime)
		token.ExpiresAt = &expiresAt
	}

	rawToken, err := generateToken()
	if err != nil {
		return models.APIToken{}, "", err
	}
	token.TokenHash = repository.HashToken(rawToken)

	created, err := service.tokenRepo.Create(ctx, token)
	if err != nil {
		return models.APIToken{}, "", fmt.Errorf("creating token: %w", err)
	}

	slog.Info("api token created", "id", created.ID, "scope", created.Scope, "userId", userID)
	return created, rawToken, nil
}

func (service *AuthService) ListTokens(ctx context.Context) ([]models.APIToken, error) {
	return service.tokenRepo.FindAll(ctx)
}

func (service *AuthService) DeleteToken(ctx context.Context, id string) error {
	return service.tokenRepo.Delete(ctx, id)
}

func (service *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return service.userRepo.FindAll(ctx)
}

func (service *AuthService) SetRole(ctx context.Context, userID string, role models.Role) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return newValidationError("role", "must be one of admin member")
	}
	return service.userRepo.UpdateRole(ctx, userID, role)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
