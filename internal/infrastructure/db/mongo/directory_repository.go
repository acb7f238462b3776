package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

const directoryCollection = "directory_users"

// DirectoryRepository persists local fallback directory users.
type DirectoryRepository struct {
	coll *mongo.Collection
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{coll: db.Collection(directoryCollection)}
}

type directoryUser struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	Email        string `bson:"email,omitempty"`
	PasswordHash string `bson:"password_hash"`
	PinHash      string `bson:"pin_hash"`
	Role         string `bson:"role"`
	FirstName    string `bson:"first_name,omitempty"`
	LastName     string `bson:"last_name,omitempty"`
	CompanyName  string `bson:"company_name,omitempty"`
	IsVerified   bool   `bson:"is_verified"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

// Create inserts a user row. A duplicate username maps to ErrUsernameTaken
// and leaves the existing row untouched.
func (r *DirectoryRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := directoryUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		PinHash:      user.PinHash,
		Role:         user.Role,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CompanyName:  user.CompanyName,
		IsVerified:   user.IsVerified,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert directory user: %w", err)
	}

	return r.FindByUsername(ctx, user.Username)
}

func (r *DirectoryRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var du directoryUser
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&du); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find directory user: %w", err)
	}

	return &domain.User{
		ID:           du.ID,
		Username:     du.Username,
		Email:        du.Email,
		PasswordHash: du.PasswordHash,
		PinHash:      du.PinHash,
		Role:         du.Role,
		FirstName:    du.FirstName,
		LastName:     du.LastName,
		CompanyName:  du.CompanyName,
		IsVerified:   du.IsVerified,
		CreatedAt:    unixToTime(du.CreatedAt),
		UpdatedAt:    unixToTime(du.UpdatedAt),
	}, nil
}

func (r *DirectoryRepository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	return r.setFields(ctx, username, bson.M{"password_hash": hash})
}

func (r *DirectoryRepository) MarkVerified(ctx context.Context, username string) error {
	return r.setFields(ctx, username, bson.M{"is_verified": true})
}

func (r *DirectoryRepository) setFields(ctx context.Context, username string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC().Unix()

	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update directory user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username index the duplicate mapping
// in Create relies on.
func (r *DirectoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
