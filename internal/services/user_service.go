package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"urgentsales/server/internal/auth"
	"urgentsales/server/internal/db"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/utils"
)

const usersCollection = "users"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
)

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

type IUserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id utils.SixID) (*models.User, error)
	UpdateNotificationPreferences(ctx context.Context, id utils.SixID, prefs models.NotificationPreferences) error
}

type userService struct {
	db        *mongo.Database
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(database *mongo.Database, jwtSecret string, jwtTTL time.Duration) IUserService {
	return &userService{db: database, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, "", &listing.ValidationError{Field: "email", Msg: "email and password are required"}
	}
	role := in.Role
	switch role {
	case "", string(listing.RoleUser):
		role = string(listing.RoleUser)
	case string(listing.RoleAgent):
	default:
		// Admin and company roles are granted out of band, never at
		// signup.
		return nil, "", &listing.ValidationError{Field: "role", Msg: "role cannot be chosen at registration"}
	}

	coll := s.db.Collection(usersCollection)
	count, err := coll.CountDocuments(ctx, bson.M{"email": email, "deleted": false})
	if err != nil {
		return nil, "", fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	var user *models.User
	err = db.Try(func() error {
		user = &models.User{
			Base:         models.NewBase(),
			Name:         strings.TrimSpace(in.Name),
			Email:        email,
			Phone:        strings.TrimSpace(in.Phone),
			PasswordHash: hash,
			Role:         models.UserRole(role),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, insertErr := coll.InsertOne(ctx, user)
		return insertErr
	})
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := auth.GenerateToken(s.jwtSecret, s.jwtTTL, user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email)), "deleted": false}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	if user.Suspended {
		return nil, "", ErrAccountSuspended
	}

	token, err := auth.GenerateToken(s.jwtSecret, s.jwtTTL, user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return &user, token, nil
}

func (s *userService) GetByID(ctx context.Context, id utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"_id": id, "deleted": false}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listing.ErrNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &user, nil
}

func (s *userService) UpdateNotificationPreferences(ctx context.Context, id utils.SixID, prefs models.NotificationPreferences) error {
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": id, "deleted": false},
		bson.M{"$set": bson.M{"notification_preferences": prefs, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("updating preferences: %w", err)
	}
	if result.MatchedCount == 0 {
		return listing.ErrNotFound
	}
	return nil
}
