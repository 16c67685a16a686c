package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/librefy/librefy-cli/internal/common"
	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
)

// apiClient is the slice of the HTTP client the services need.
type apiClient interface {
	Get(ctx context.Context, path string, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
	Put(ctx context.Context, path string, body, dest any) error
	Delete(ctx context.Context, path string, dest any) error
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
}

// UpdateProfileRequest carries the editable profile fields. Empty fields are
// omitted and left unchanged server-side.
type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, persist the session and the
//     unlock material for later offline use.
//   - OfflineUnlock: verify credentials against locally stored material when
//     the server is unreachable.
//   - Logout: best-effort server logout, then wipe the local session.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (*models.AuthSession, error)
	OfflineUnlock(ctx context.Context, username string, password []byte) (*models.User, error)
	Register(ctx context.Context, req RegisterRequest) (*models.AuthSession, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, current, updated string) error
	ChangeEmail(ctx context.Context, newEmail, password string) (*models.User, error)
	VerifyToken(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

type authService struct {
	api      apiClient
	sessions *SessionStore
	log      logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(api apiClient, sessions *SessionStore, log logging.Logger) AuthService {
	return &authService{api: api, sessions: sessions, log: log}
}

// Login authenticates against the server and persists the session plus the
// derived unlock material. The password bytes are not retained.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.AuthSession, error) {
	body := map[string]string{"username": username, "password": string(password)}

	var session models.AuthSession
	if err := a.api.Post(ctx, "/v1/auth/login", body, &session); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	if err := a.sessions.SaveUnlockMaterial(ctx, password); err != nil {
		return nil, fmt.Errorf("unlock material saving error: %w", err)
	}
	return &session, nil
}

// OfflineUnlock verifies the credentials against locally stored material and
// returns the cached profile. Returns common.ErrNoSession if this device has
// never completed an online login, common.ErrUnauthorized on mismatch.
func (a *authService) OfflineUnlock(ctx context.Context, username string, password []byte) (*models.User, error) {
	if err := a.sessions.VerifyUnlock(ctx, username, password); err != nil {
		return nil, err
	}
	return a.sessions.User(ctx)
}

// Register creates a new account and, like Login, persists the returned
// session so the user lands signed in.
func (a *authService) Register(ctx context.Context, req RegisterRequest) (*models.AuthSession, error) {
	var session models.AuthSession
	if err := a.api.Post(ctx, "/v1/auth/register", req, &session); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	if err := a.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	if err := a.sessions.SaveUnlockMaterial(ctx, []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("unlock material saving error: %w", err)
	}
	return &session, nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.api.Post(ctx, "/v1/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (a *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "new_password": newPassword}
	return a.api.Post(ctx, "/v1/auth/reset-password", body, nil)
}

// Profile fetches the account profile and refreshes the stored copy.
func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.api.Get(ctx, "/v1/auth/profile", &user); err != nil {
		return nil, err
	}
	if err := a.sessions.SaveUser(ctx, user); err != nil {
		a.log.Warn(ctx, "stored profile refresh failed", "error", err)
	}
	return &user, nil
}

func (a *authService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := a.api.Put(ctx, "/v1/auth/profile", req, &user); err != nil {
		return nil, err
	}
	if err := a.sessions.SaveUser(ctx, user); err != nil {
		a.log.Warn(ctx, "stored profile refresh failed", "error", err)
	}
	return &user, nil
}

func (a *authService) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{"current_password": current, "new_password": updated}
	if err := a.api.Put(ctx, "/v1/auth/change-password", body, nil); err != nil {
		return err
	}
	// The old unlock material verifies the old password; rotate it.
	if err := a.sessions.SaveUnlockMaterial(ctx, []byte(updated)); err != nil {
		return fmt.Errorf("unlock material rotation error: %w", err)
	}
	return nil
}

func (a *authService) ChangeEmail(ctx context.Context, newEmail, password string) (*models.User, error) {
	body := map[string]string{"new_email": newEmail, "password": password}
	var user models.User
	if err := a.api.Put(ctx, "/v1/auth/change-email", body, &user); err != nil {
		return nil, err
	}
	if err := a.sessions.SaveUser(ctx, user); err != nil {
		a.log.Warn(ctx, "stored profile refresh failed", "error", err)
	}
	return &user, nil
}

// VerifyToken asks the server whether the stored token is still good and
// returns the account it belongs to.
func (a *authService) VerifyToken(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := a.api.Get(ctx, "/v1/auth/verify-token", &resp); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.ErrTokenExpired
		}
		return nil, err
	}
	return &resp.User, nil
}

// Logout tells the server, then wipes the local session either way. A server
// failure is logged, not returned: the device must end up signed out.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Post(ctx, "/v1/auth/logout", nil, nil); err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	return a.sessions.Clear(ctx)
}
