package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/oauth"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

const (
	passwordResetTTL = time.Hour
	defaultUserRole  = "user"
	providerLocal    = "local"
	providerGoogle   = "google"
)

// PasswordResetMailer sends password reset links
type PasswordResetMailer interface {
	SendPasswordResetEmail(toEmail, token string) error
}

// GoogleAuthenticator resolves a Google authorization code to an identity
type GoogleAuthenticator interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (*oauth.Identity, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	tenantRepo        repository.TenantRepository
	passwordResetRepo repository.PasswordResetTokenRepository
	tenants           *TenantService
	jwtManager        *utils.JWTManager
	mailer            PasswordResetMailer
	google            GoogleAuthenticator
	clock             clock.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tenantRepo repository.TenantRepository,
	passwordResetRepo repository.PasswordResetTokenRepository,
	tenants *TenantService,
	jwtManager *utils.JWTManager,
	mailer PasswordResetMailer,
	google GoogleAuthenticator,
	clk clock.Clock,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		roleRepo:          roleRepo,
		tenantRepo:        tenantRepo,
		passwordResetRepo: passwordResetRepo,
		tenants:           tenants,
		jwtManager:        jwtManager,
		mailer:            mailer,
		google:            google,
		clock:             clk,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	TenantID     uuid.UUID
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens scoped to their first tenant
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID, uuid.Nil)
}

// issueTokens loads the user with roles and signs a token pair. A nil
// tenantID selects the user's first membership.
func (s *AuthService) issueTokens(ctx context.Context, userID, tenantID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	if tenantID == uuid.Nil {
		membership, err := s.tenantRepo.GetFirstMembership(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if membership != nil {
			tenantID = membership.TenantID
		}
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, tenantID, user.Email, user.RoleNames(), user.PermissionNames())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, tenantID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		TenantID:     tenantID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RegisterInput represents the registration input
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	StoreName string
}

// Register creates a user, their store and the owner membership, then logs
// the user in.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  usernameFromEmail(input.Email),
		Email:     input.Email,
		Password:  hashedPassword,
		Provider:  providerLocal,
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}

	tenant, err := s.createStore(ctx, user, input.StoreName)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user.ID, tenant.ID)
}

func (s *AuthService) createUser(ctx context.Context, user *entity.User) error {
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, defaultUserRole)
	if err != nil || defaultRole == nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("default role missing, user has no permissions")
		return nil
	}
	return s.userRepo.AssignRole(ctx, user.ID, defaultRole.ID)
}

func (s *AuthService) createStore(ctx context.Context, user *entity.User, name string) (*entity.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		name = user.FullName() + "'s Store"
	}
	return s.tenants.CreateTenant(ctx, &CreateTenantInput{Name: name, OwnerID: user.ID})
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local + "-" + utils.GenerateToken()[:4]
}

// RefreshToken generates new tokens from a refresh token. tenantID overrides
// the store remembered in the token and is kept only while the user is still
// a member.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string, tenantID uuid.UUID) (*LoginOutput, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	userID := claims.UserID
	if tenantID == uuid.Nil {
		tenantID = claims.TenantID
	}

	if tenantID != uuid.Nil {
		membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			tenantID = uuid.Nil
		}
	}

	return s.issueTokens(ctx, userID, tenantID)
}

// SwitchTenant issues tokens for another tenant the user belongs to
func (s *AuthService) SwitchTenant(ctx context.Context, userID, tenantID uuid.UUID) (*LoginOutput, error) {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.ErrForbidden
	}
	return s.issueTokens(ctx, userID, tenantID)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// UpdateProfileInput represents the update profile input
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Username  string
	Photo     *string
}

// UpdateProfile updates the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if input.Username != "" && input.Username != user.Username {
		existingUser, err := s.userRepo.GetByUsername(ctx, input.Username)
		if err != nil {
			return nil, err
		}
		if existingUser != nil && existingUser.ID != user.ID {
			return nil, apperror.NewConflictError("Username already taken")
		}
		user.Username = input.Username
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Photo != nil {
		user.Photo = input.Photo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ForgotPassword mails a reset token. It succeeds whether or not the email
// is registered so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("forgot password lookup failed")
		return nil
	}
	if user == nil {
		return nil
	}

	if err := s.passwordResetRepo.DeleteByEmail(ctx, user.Email); err != nil {
		log.Warn().Err(err).Msg("failed to clear old reset tokens")
	}

	token := utils.GenerateToken() + utils.GenerateToken()
	resetToken := &entity.PasswordResetToken{
		Email:     user.Email,
		TokenHash: entity.HashResetToken(token),
		ExpiresAt: s.clock.Now().Add(passwordResetTTL),
	}
	if err := s.passwordResetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("failed to send password reset email")
		return apperror.Wrap(502, "Could not send the reset email", err)
	}

	return nil
}

// ResetPasswordInput represents the reset password input
type ResetPasswordInput struct {
	Email       string
	Token       string
	NewPassword string
}

// ResetPassword resets the user's password using a valid token
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	invalid := apperror.NewBadRequestError("Invalid or expired reset token")

	resetToken, err := s.passwordResetRepo.GetByToken(ctx, input.Token)
	if err != nil {
		return err
	}
	if resetToken == nil || !strings.EqualFold(resetToken.Email, input.Email) || !resetToken.IsValid(s.clock.Now()) {
		return invalid
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return invalid
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	consumed, err := s.passwordResetRepo.Consume(ctx, resetToken.ID, s.clock.Now())
	if err != nil {
		return err
	}
	if !consumed {
		return invalid
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.passwordResetRepo.DeleteByEmail(ctx, user.Email); err != nil {
		log.Warn().Err(err).Msg("failed to clear reset tokens")
	}

	return nil
}

// GoogleAuthURL returns the consent URL for the given state
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil || !s.google.Enabled() {
		return "", apperror.Wrap(503, "Google sign-in is not configured", oauth.ErrNotConfigured)
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleLogin exchanges an authorization code and logs the Google account
// in. Unknown accounts are linked by email or registered with a new store.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	if s.google == nil || !s.google.Enabled() {
		return nil, apperror.Wrap(503, "Google sign-in is not configured", oauth.ErrNotConfigured)
	}

	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		return nil, apperror.Wrap(401, "Google sign-in failed", err)
	}

	user, err := s.userRepo.GetByProviderID(ctx, providerGoogle, info.Subject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return s.issueTokens(ctx, user.ID, uuid.Nil)
	}

	user, err = s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		providerID := info.Subject
		user.ProviderID = &providerID
		if user.Provider == "" {
			user.Provider = providerGoogle
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return s.issueTokens(ctx, user.ID, uuid.Nil)
	}

	providerID := info.Subject
	now := s.clock.Now()
	user = &entity.User{
		FirstName:       info.GivenName,
		LastName:        info.FamilyName,
		Username:        usernameFromEmail(info.Email),
		Email:           info.Email,
		Provider:        providerGoogle,
		ProviderID:      &providerID,
		EmailVerifiedAt: &now,
	}
	if info.Picture != "" {
		picture := info.Picture
		user.Photo = &picture
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}
	tenant, err := s.createStore(ctx, user, "")
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user.ID, tenant.ID)
}
