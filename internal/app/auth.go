package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"giftregistry/pkg/auth"
	"giftregistry/pkg/domain"
	"giftregistry/pkg/publicid"
	"giftregistry/pkg/store"
)

// UpdateProfileParams carries the optional profile fields; nil means "leave
// unchanged".
type UpdateProfileParams struct {
	Name  *string
	Email *string
}

// Register creates a new account and issues a token pair.
func (a *App) Register(name, email, password string) (domain.User, string, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", "", badRequest("Nome, e-mail e senha são obrigatórios")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", "", badRequest("Senha deve ter pelo menos 6 caracteres")
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", "", conflict("E-mail já cadastrado")
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("hash password: %w", err)
	}
	globalHash, err := publicid.NewGlobalHash()
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("generate global hash: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		GlobalHashID: globalHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", "", fmt.Errorf("save user: %w", err)
	}
	return a.issueUserTokens(user)
}

// Login validates credentials and issues a token pair.
func (a *App) Login(email, password string) (domain.User, string, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, "", "", badRequest("E-mail e senha são obrigatórios")
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", "", unauthorized("E-mail ou senha incorretos")
	}
	return a.issueUserTokens(user)
}

// Refresh rotates the refresh token and issues a new token pair.
func (a *App) Refresh(refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", badRequest("Refresh token é obrigatório")
	}
	userID, newRefreshToken, err := a.refreshTokens.RotateToken(refreshToken, a.refreshTTL)
	if err != nil {
		if errors.Is(err, store.ErrInvalidRefreshToken) {
			return "", "", unauthorized("Refresh token inválido ou expirado")
		}
		return "", "", fmt.Errorf("rotate refresh token: %w", err)
	}
	user, found, err := a.store.GetUserByID(userID)
	if err != nil {
		return "", "", fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		_ = a.refreshTokens.DeleteToken(newRefreshToken)
		return "", "", unauthorized("Usuário não encontrado")
	}
	accessToken, err := a.sessions.NewSession(user.ID)
	if err != nil {
		_ = a.refreshTokens.DeleteToken(newRefreshToken)
		return "", "", fmt.Errorf("issue access token: %w", err)
	}
	return accessToken, newRefreshToken, nil
}

// Logout revokes one refresh token, or every token of the user when none is
// supplied.
func (a *App) Logout(userID, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return a.refreshTokens.RevokeUserTokens(userID)
	}
	return a.refreshTokens.DeleteToken(refreshToken)
}

// UserFromToken resolves a user from an access token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// GetUser loads a user profile by id.
func (a *App) GetUser(userID string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, notFound("Usuário não encontrado")
	}
	return user, nil
}

// UpdateProfile changes the user's display name and/or email.
func (a *App) UpdateProfile(userID string, params UpdateProfileParams) (domain.User, error) {
	user, err := a.GetUser(userID)
	if err != nil {
		return domain.User{}, err
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if len([]rune(name)) < 2 {
			return domain.User{}, badRequest("Nome deve ter pelo menos 2 caracteres")
		}
		user.Name = name
	}
	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email != "" && email != user.Email {
			existing, ok, err := a.store.GetUserByEmail(email)
			if err != nil {
				return domain.User{}, fmt.Errorf("check email: %w", err)
			}
			if ok && existing.ID != user.ID {
				return domain.User{}, conflict("Este e-mail já está em uso")
			}
			user.Email = email
		}
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every refresh token of the user.
func (a *App) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := a.GetUser(userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return unauthorized("Senha atual incorreta")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return badRequest("Nova senha deve ter pelo menos 6 caracteres")
	}
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := a.refreshTokens.RevokeUserTokens(userID); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (a *App) issueUserTokens(user domain.User) (domain.User, string, string, error) {
	accessToken, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := a.refreshTokens.NewToken(user.ID, a.refreshTTL)
	if err != nil {
		return domain.User{}, "", "", fmt.Errorf("issue refresh token: %w", err)
	}
	return user, accessToken, refreshToken, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
