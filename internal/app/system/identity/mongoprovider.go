package identity

import (
	"context"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// MongoProvider keeps accounts in the identities collection with
// bcrypt-hashed passwords. The email column carries a unique index
// (see system/indexes).
type MongoProvider struct {
	c *mongo.Collection
}

func NewMongoProvider(db *mongo.Database) *MongoProvider {
	return &MongoProvider{c: db.Collection("identities")}
}

type identityDoc struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash []byte `bson:"passwordHash"`
	DisplayName  string `bson:"displayName,omitempty"`
}

func (p *MongoProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	doc := identityDoc{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := p.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return doc.ID, nil
}

func (p *MongoProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	var doc identityDoc
	if err := p.c.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword(doc.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return doc.ID, nil
}

func (p *MongoProvider) Reauthenticate(ctx context.Context, userID, currentPassword string) error {
	var doc identityDoc
	if err := p.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword(doc.PasswordHash, []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (p *MongoProvider) UpdateEmail(ctx context.Context, userID, newEmail string) error {
	res, err := p.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"email": newEmail}},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrEmailTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *MongoProvider) UpdateDisplayName(ctx context.Context, userID, name string) error {
	res, err := p.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"displayName": name}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
