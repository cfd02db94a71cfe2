package store

import (
	"context"
	"errors"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUser inserts a new user, stamping timestamps
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.LastConnection = now
	if user.Documents == nil {
		user.Documents = []models.UserDocument{}
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Validation("a user with email %q already exists", user.Email)
		}
		return apperr.Storage(err, "failed to create user")
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil without error when
// no user carries the address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get user by email")
	}
	return &user, nil
}

// ListUsers retrieves all users
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Storage(err, "failed to list users")
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperr.Storage(err, "failed to decode users")
	}
	return users, nil
}

// UpdateUser applies a partial update and refreshes updated_at. The password
// field must already be hashed by the caller.
func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}

	return s.findOneAndUpdateUser(ctx, id, bson.M{"$set": set})
}

// DeleteUser removes a user
func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Storage(err, "failed to delete user")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// UpdateLastConnection refreshes the last connection timestamp
func (s *Store) UpdateLastConnection(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOneAndUpdateUser(ctx, id, bson.M{
		"$set": bson.M{"last_connection": time.Now().UTC()},
	})
}

// SetUserRole changes the user's role
func (s *Store) SetUserRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return s.findOneAndUpdateUser(ctx, id, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
}

// AddUserDocument appends an uploaded document record
func (s *Store) AddUserDocument(ctx context.Context, id primitive.ObjectID, doc models.UserDocument) (*models.User, error) {
	return s.findOneAndUpdateUser(ctx, id, bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// SetResetToken stores a password reset token and its expiry
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	_, err := s.findOneAndUpdateUser(ctx, id, bson.M{
		"$set": bson.M{"reset_token": token, "reset_token_expires": expires},
	})
	return err
}

// GetUserByResetToken looks a user up by a pending reset token
func (s *Store) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"reset_token": token}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("reset token not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get user by reset token")
	}
	return &user, nil
}

// ClearResetToken removes a consumed or expired reset token and stores the
// already-hashed replacement password.
func (s *Store) ClearResetToken(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	_, err := s.findOneAndUpdateUser(ctx, id, bson.M{
		"$set":   bson.M{"password": hashedPassword, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
	})
	return err
}

func (s *Store) findOneAndUpdateUser(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	var user models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("a user with that email already exists")
		}
		return nil, apperr.Storage(err, "failed to update user")
	}
	return &user, nil
}
