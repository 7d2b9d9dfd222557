package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/hash"
	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
	"github.com/mbenitez/tienda/internal/tokens"
)

const (
	accessTokenTTL      = 15 * time.Minute
	refreshTokenTTL     = 7 * 24 * time.Hour
	resetTokenTTL       = time.Hour
	inactivityThreshold = 48 * time.Hour
)

// requiredDocuments is the fixed verification set that promotes a user
// to premium once complete.
var requiredDocuments = []string{"identification", "proofOfAddress", "accountStatement"}

type UserService struct {
	Repo          *repo.GormRepo
	Mailer        Mailer
	Events        EventPublisher
	JWTSecret     []byte
	RefreshSecret []byte
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Age       int
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Age          *int
	ProfileImage *string
}

// RoleForDocuments recomputes the role derived from the verification
// document set. Admins are never demoted; everyone else is premium
// exactly when all required documents are present.
func RoleForDocuments(current string, docs []models.UserDocument) string {
	if current == models.RoleAdmin {
		return models.RoleAdmin
	}
	have := make(map[string]bool, len(docs))
	for _, d := range docs {
		have[d.Name] = true
	}
	for _, name := range requiredDocuments {
		if !have[name] {
			return current
		}
	}
	return models.RolePremium
}

// Register provisions a user and its cart as a two-phase create: when
// the cart write fails the user record is rolled back so no account
// exists without a cart.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	if in.Email == "" || in.Password == "" {
		return nil, nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, nil, fmt.Errorf("email %q: %w", in.Email, ErrDuplicateEmail)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := models.User{
		Email:          in.Email,
		PasswordHash:   pwHash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Age:            in.Age,
		Role:           models.RoleUser,
		LastConnection: time.Now(),
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, nil, err
	}

	cart := models.Cart{UserID: user.ID}
	if err := s.Repo.CreateCart(ctx, &cart); err != nil {
		if derr := s.Repo.DeleteUser(ctx, user.ID); derr != nil {
			l.Error("rollback user after cart failure", "user_id", user.ID, "error", derr)
		}
		return nil, nil, fmt.Errorf("provision cart: %w", err)
	}

	l.Info("user registered", "user_id", user.ID)

	if s.Events != nil {
		event := map[string]any{
			"type":   "user_registered",
			"userID": user.ID.String(),
			"email":  user.Email,
		}
		if err := s.Events.Publish(ctx, "user_events", user.ID.String(), event); err != nil {
			l.Error("publish register event", "error", err)
		}
	}

	return &user, &cart, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	accessExp := time.Now().Add(accessTokenTTL)
	accessToken, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Role, user.Email, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(refreshTokenTTL)
	refreshToken, err := tokens.NewRefreshToken(s.RefreshSecret, user.ID.String(), refreshExp)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	user.LastConnection = time.Now()
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.Repo.RevokeRefreshToken(ctx, refreshToken)
}

// Refresh reissues an access token from a live refresh token. Revoked,
// expired or unknown tokens are all rejected the same way.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.ParseRefreshClaims(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", ErrAuthExpired)
	}

	stored, err := s.Repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token: %w", ErrAuthExpired)
		}
		return nil, err
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("refresh token: %w", ErrAuthExpired)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", ErrAuthExpired)
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessExp := time.Now().Add(accessTokenTTL)
	accessToken, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Role, user.Email, accessExp)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("access token refreshed", "user_id", user.ID)
	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   stored.ExpiresAt,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.ProfileImage != nil {
		user.ProfileImage = *upd.ProfileImage
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateDocuments upserts uploaded verification documents and
// recomputes the derived role. It reports whether the user ended up
// premium.
func (s *UserService) UpdateDocuments(ctx context.Context, userID uuid.UUID, docs map[string]string) (*models.User, bool, error) {
	if len(docs) == 0 {
		return nil, false, fmt.Errorf("no documents uploaded: %w", ErrValidation)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	for name, reference := range docs {
		if err := s.Repo.UpsertDocument(ctx, userID, name, reference); err != nil {
			return nil, false, err
		}
	}

	user, err = s.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	role := RoleForDocuments(user.Role, user.Documents)
	if role != user.Role {
		user.Role = role
		if err := s.Repo.SaveUser(ctx, user); err != nil {
			return nil, false, err
		}
	}
	return user, user.Role == models.RolePremium, nil
}

// TogglePremium flips a user between the user and premium roles.
func (s *UserService) TogglePremium(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleUser:
		user.Role = models.RolePremium
	case models.RolePremium:
		user.Role = models.RoleUser
	default:
		return nil, fmt.Errorf("role %q cannot be toggled: %w", user.Role, ErrValidation)
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error) {
	switch role {
	case models.RoleUser, models.RolePremium, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and its cart, zeroes stock on products
// the account owned and emails the owner. Admin accounts are protected.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", userID)

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return fmt.Errorf("admin accounts cannot be deleted: %w", ErrForbidden)
	}

	return s.removeAccount(ctx, l, user, "Cuenta eliminada",
		"Tu cuenta ha sido eliminada por un administrador.")
}

// DeleteInactive sweeps non-admin accounts with no login inside the
// inactivity threshold. Returns how many accounts were removed.
func (s *UserService) DeleteInactive(ctx context.Context) (int, error) {
	l := logging.FromContext(ctx).With("svc", "user.delete_inactive")

	users, err := s.Repo.GetInactiveUsers(ctx, time.Now().Add(-inactivityThreshold))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range users {
		if err := s.removeAccount(ctx, l, &users[i], "Cuenta eliminada",
			"Tu cuenta ha sido eliminada por inactividad."); err != nil {
			l.Error("delete inactive user", "user_id", users[i].ID, "error", err)
			continue
		}
		deleted++
	}

	l.Info("inactive users deleted", "count", deleted)
	return deleted, nil
}

func (s *UserService) removeAccount(ctx context.Context, l *slog.Logger, user *models.User, subject, body string) error {
	if err := s.Repo.ZeroStockByOwner(ctx, user.Email); err != nil {
		return err
	}

	if s.Mailer != nil {
		if err := s.Mailer.Send(user.Email, subject, body); err != nil {
			l.Error("send account removal email", "email", user.Email, "error", err)
		}
	}

	if cart, err := s.Repo.GetCartByUser(ctx, user.ID); err == nil {
		if err := s.Repo.DeleteCart(ctx, cart.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.Repo.DeleteUser(ctx, user.ID)
}

// RequestPasswordReset emails a one-hour reset link. The token expiry
// is checked by comparison at use time, not by background eviction.
func (s *UserService) RequestPasswordReset(ctx context.Context, email, baseURL string) error {
	l := logging.FromContext(ctx).With("svc", "user.password_reset")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q: %w", email, ErrNotFound)
		}
		return err
	}

	token := models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.Repo.CreatePasswordResetToken(ctx, &token); err != nil {
		return err
	}

	if s.Mailer != nil {
		link := fmt.Sprintf("%s/reset-password/%s", baseURL, token.Token)
		body := "Haz clic en el siguiente enlace para restablecer tu contraseña:\n\n" + link
		if err := s.Mailer.Send(user.Email, "Restablecer contraseña", body); err != nil {
			l.Error("send reset email", "email", user.Email, "error", err)
		}
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password == "" || password != confirm {
		return fmt.Errorf("passwords do not match: %w", ErrValidation)
	}

	t, err := s.Repo.GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reset token: %w", ErrNotFound)
		}
		return err
	}
	if t.Used || time.Now().After(t.ExpiresAt) {
		return fmt.Errorf("reset token: %w", ErrAuthExpired)
	}

	user, err := s.GetUser(ctx, t.UserID)
	if err != nil {
		return err
	}
	if hash.CheckPassword(user.PasswordHash, password) {
		return fmt.Errorf("new password must differ from the current one: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = pwHash
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return err
	}
	return s.Repo.MarkPasswordResetTokenUsed(ctx, t.ID)
}
