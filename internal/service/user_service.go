package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/auth"
	"commerce-service/internal/models"
	"commerce-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// UserService handles account business logic
type UserService struct {
	users         UserStore
	carts         CartStore
	publisher     EventPublisher
	adminEmail    string
	resetTokenTTL time.Duration
	logger        *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, carts CartStore, publisher EventPublisher, adminEmail string, resetTokenTTL time.Duration) *UserService {
	return &UserService{
		users:         users,
		carts:         carts,
		publisher:     publisher,
		adminEmail:    adminEmail,
		resetTokenTTL: resetTokenTTL,
		logger:        util.GetLogger(),
	}
}

// RegisterRequest carries the fields required to create a user
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Age       int    `json:"age"`
}

// Register validates and creates a user together with its cart
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Register")
	defer span.End()

	if err := s.validateRegister(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("a user with email %q already exists", email)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Storage(err, "failed to hash password")
	}

	role := models.RoleUser
	if email == strings.ToLower(s.adminEmail) {
		role = models.RoleAdmin
	}

	// Every user owns exactly one cart, created up front. The user id is
	// generated here so the cart can reference its owner immediately.
	userID := primitive.NewObjectID()
	cart, err := s.carts.CreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        userID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hashed,
		Role:      role,
		Age:       req.Age,
		CartID:    cart.ID,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	s.publish(ctx, func() error {
		return s.publisher.PublishUserRegistered(ctx, &models.UserRegisteredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeUserRegistered,
				Timestamp: time.Now(),
			},
			UserID:    user.ID.Hex(),
			Email:     user.Email,
			FirstName: user.FirstName,
		})
	})

	return user, nil
}

// ValidateCredentials looks a user up by email and verifies the password.
// Unknown email and wrong password fail identically so callers cannot
// enumerate accounts.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.ValidateCredentials")
	defer span.End()

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.Password) {
		return nil, apperr.Authentication("invalid credentials")
	}
	return user, nil
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// GetUserByEmail retrieves a user by email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// ListUsers retrieves all users
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateUser applies a partial update, re-hashing the password and
// re-checking email uniqueness when those fields change.
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !emailPattern.MatchString(email) {
			return nil, apperr.Validation("invalid email format")
		}
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Validation("a user with email %q already exists", email)
		}
		update.Email = &email
	}

	if update.Password != nil {
		if len(*update.Password) < minPasswordLength {
			return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := auth.HashPassword(*update.Password)
		if err != nil {
			return nil, apperr.Storage(err, "failed to hash password")
		}
		update.Password = &hashed
	}

	return s.users.UpdateUser(ctx, id, update)
}

// DeleteUser removes a user
func (s *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return s.users.DeleteUser(ctx, id)
}

// UpdateLastConnection refreshes the last connection timestamp
func (s *UserService) UpdateLastConnection(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.UpdateLastConnection(ctx, id)
}

// AddDocument records an uploaded document for the user
func (s *UserService) AddDocument(ctx context.Context, id primitive.ObjectID, name, reference string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(reference) == "" {
		return nil, apperr.Validation("document name and reference are required")
	}
	return s.users.AddUserDocument(ctx, id, models.UserDocument{
		Name:      name,
		Reference: reference,
		Status:    "pending",
	})
}

// UpgradeToPremium promotes a user once all required documents are uploaded
func (s *UserService) UpgradeToPremium(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpgradeToPremium")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uploaded := make(map[string]bool, len(user.Documents))
	for _, doc := range user.Documents {
		uploaded[doc.Name] = true
	}
	for _, required := range models.RequiredPremiumDocuments {
		if !uploaded[required] {
			return nil, apperr.Authorization("missing required document: %s", required)
		}
	}

	return s.users.SetUserRole(ctx, id, models.RolePremium)
}

// RequestPasswordReset issues a reset token for the account. An unknown
// email is accepted silently so the endpoint cannot be used to probe for
// accounts; the mail simply never arrives.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := util.StartSpan(ctx, "UserService.RequestPasswordReset")
	defer span.End()

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return apperr.Storage(err, "failed to generate reset token")
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().UTC().Add(s.resetTokenTTL)

	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	s.publish(ctx, func() error {
		return s.publisher.PublishPasswordResetRequested(ctx, &models.PasswordResetRequestedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePasswordResetRequested,
				Timestamp: time.Now(),
			},
			Email:     user.Email,
			Token:     token,
			ExpiresAt: expires,
		})
	})

	return nil
}

// ResetPassword consumes a reset token and replaces the password
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := util.StartSpan(ctx, "UserService.ResetPassword")
	defer span.End()

	if len(newPassword) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Authentication("invalid or expired reset token")
		}
		return err
	}
	if time.Now().UTC().After(user.ResetTokenExpires) {
		return apperr.Authentication("invalid or expired reset token")
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Storage(err, "failed to hash password")
	}

	return s.users.ClearResetToken(ctx, user.ID, hashed)
}

func (s *UserService) publish(ctx context.Context, fn func() error) {
	if s.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Error("Failed to publish event", zap.Error(err))
	}
}

func (s *UserService) validateRegister(req *RegisterRequest) error {
	missing := []string{}
	if strings.TrimSpace(req.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(req.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !emailPattern.MatchString(strings.ToLower(strings.TrimSpace(req.Email))) {
		return apperr.Validation("invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if req.Age < 0 {
		return apperr.Validation("age cannot be negative")
	}
	return nil
}
