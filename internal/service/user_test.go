package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
	"github.com/mbenitez/tienda/internal/tokens"
)

func newUserService(r *repo.GormRepo, mailer *recordingMailer) *UserService {
	return &UserService{
		Repo:          r,
		Mailer:        mailer,
		JWTSecret:     []byte("test-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestRegisterProvisionsCart(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user, cart, err := svc.Register(ctx, RegisterInput{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, user.ID, cart.UserID)

	got, err := r.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "other456"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var users, carts int64
	require.NoError(t, r.DB.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, r.DB.Model(&models.Cart{}).Count(&carts).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), carts)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginAndLogout(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "login@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.AccessExp.After(time.Now()))

	_, err = svc.Login(ctx, "login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.Logout(ctx, result.RefreshToken))
}

func TestRefreshReissuesAccessToken(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "refresh@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "refresh@example.com", "secret123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, refreshed.RefreshToken)

	claims, err := tokens.ParseAccessClaims(refreshed.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID.String(), claims.Subject)
	assert.Equal(t, login.User.Email, claims.Email)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "revoked@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "revoked@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestRefreshRejectsExpiredRow(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user := seedUser(t, r, "stale-token@example.com", models.RoleUser)

	// Signed token still valid, stored row already past its TTL.
	token, err := tokens.NewRefreshToken(svc.RefreshSecret, user.ID.String(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, r.CreateRefreshToken(ctx, &models.RefreshToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err = svc.Refresh(ctx, token)
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestRoleForDocuments(t *testing.T) {
	docs := func(names ...string) []models.UserDocument {
		out := make([]models.UserDocument, 0, len(names))
		for _, n := range names {
			out = append(out, models.UserDocument{Name: n, Reference: "/uploads/" + n})
		}
		return out
	}

	assert.Equal(t, models.RoleUser, RoleForDocuments(models.RoleUser, nil))
	assert.Equal(t, models.RoleUser,
		RoleForDocuments(models.RoleUser, docs("identification", "proofOfAddress")))
	assert.Equal(t, models.RolePremium,
		RoleForDocuments(models.RoleUser, docs("identification", "proofOfAddress", "accountStatement")))
	assert.Equal(t, models.RolePremium,
		RoleForDocuments(models.RolePremium, docs("identification", "proofOfAddress", "accountStatement")))
	assert.Equal(t, models.RoleAdmin, RoleForDocuments(models.RoleAdmin, nil))
}

func TestUpdateDocumentsPromotes(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user := seedUser(t, r, "docs@example.com", models.RoleUser)

	_, premium, err := svc.UpdateDocuments(ctx, user.ID, map[string]string{
		"identification": "/uploads/id.pdf",
		"proofOfAddress": "/uploads/address.pdf",
	})
	require.NoError(t, err)
	assert.False(t, premium)

	updated, premium, err := svc.UpdateDocuments(ctx, user.ID, map[string]string{
		"accountStatement": "/uploads/statement.pdf",
	})
	require.NoError(t, err)
	assert.True(t, premium)
	assert.Equal(t, models.RolePremium, updated.Role)

	_, _, err = svc.UpdateDocuments(ctx, user.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTogglePremium(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user := seedUser(t, r, "toggle@example.com", models.RoleUser)
	admin := seedUser(t, r, "admin@example.com", models.RoleAdmin)

	updated, err := svc.TogglePremium(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RolePremium, updated.Role)

	updated, err = svc.TogglePremium(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = svc.TogglePremium(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetRole(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user := seedUser(t, r, "role@example.com", models.RoleUser)

	updated, err := svc.SetRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = svc.SetRole(ctx, user.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRole(ctx, uuid.New(), models.RoleUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserZeroesOwnedStock(t *testing.T) {
	r := newTestRepo(t)
	mailer := &recordingMailer{}
	svc := newUserService(r, mailer)
	ctx := context.Background()

	user := seedUser(t, r, "seller@example.com", models.RolePremium)
	cart := seedCart(t, r, user.ID)

	owned := seedProduct(t, r, "Handmade Mug", "12.00", 7)
	owned.Owner = user.Email
	require.NoError(t, r.SaveProduct(ctx, owned))
	other := seedProduct(t, r, "Lamp", "20.00", 4)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err := r.GetUser(ctx, user.ID)
	assert.Error(t, err)
	_, err = r.GetCart(ctx, cart.ID)
	assert.Error(t, err)

	updated, err := r.GetProduct(ctx, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	untouched, err := r.GetProduct(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, untouched.Stock)

	mail, ok := mailer.lastSent()
	require.True(t, ok)
	assert.Equal(t, "seller@example.com", mail.To)
	assert.Equal(t, "Cuenta eliminada", mail.Subject)
}

func TestDeleteUserProtectsAdmins(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)

	admin := seedUser(t, r, "admin@example.com", models.RoleAdmin)

	err := svc.DeleteUser(context.Background(), admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteInactiveSweep(t *testing.T) {
	r := newTestRepo(t)
	mailer := &recordingMailer{}
	svc := newUserService(r, mailer)
	ctx := context.Background()

	stale := seedUser(t, r, "stale@example.com", models.RoleUser)
	stale.LastConnection = time.Now().Add(-72 * time.Hour)
	require.NoError(t, r.SaveUser(ctx, stale))
	seedCart(t, r, stale.ID)

	fresh := seedUser(t, r, "fresh@example.com", models.RoleUser)
	fresh.LastConnection = time.Now()
	require.NoError(t, r.SaveUser(ctx, fresh))

	admin := seedUser(t, r, "admin@example.com", models.RoleAdmin)
	admin.LastConnection = time.Now().Add(-72 * time.Hour)
	require.NoError(t, r.SaveUser(ctx, admin))

	deleted, err := svc.DeleteInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = r.GetUser(ctx, stale.ID)
	assert.Error(t, err)
	_, err = r.GetUser(ctx, fresh.ID)
	assert.NoError(t, err)
	_, err = r.GetUser(ctx, admin.ID)
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	r := newTestRepo(t)
	mailer := &recordingMailer{}
	svc := newUserService(r, mailer)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "reset@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com", "https://shop.example.com"))

	err = svc.RequestPasswordReset(ctx, "nobody@example.com", "https://shop.example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	mail, ok := mailer.lastSent()
	require.True(t, ok)
	assert.Equal(t, "Restablecer contraseña", mail.Subject)

	idx := strings.LastIndex(mail.Body, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0)
	token := mail.Body[idx+len("/reset-password/"):]

	err = svc.ResetPassword(ctx, token, "newpass456", "mismatch")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ResetPassword(ctx, token, "secret123", "secret123")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ResetPassword(ctx, "no-such-token", "newpass456", "newpass456")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.ResetPassword(ctx, token, "newpass456", "newpass456"))

	_, err = svc.Login(ctx, "reset@example.com", "newpass456")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "reset@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A consumed token cannot be replayed.
	err = svc.ResetPassword(ctx, token, "another789", "another789")
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	r := newTestRepo(t)
	svc := newUserService(r, nil)
	ctx := context.Background()

	user := seedUser(t, r, "expired@example.com", models.RoleUser)

	token := models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, r.CreatePasswordResetToken(ctx, &token))

	err := svc.ResetPassword(ctx, token.Token, "newpass456", "newpass456")
	assert.ErrorIs(t, err, ErrAuthExpired)
}
