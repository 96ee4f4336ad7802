package forms

import (
	"errors"
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) createIndexForAccessTokens() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionAccessTokens().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "token", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "formID", Value: 1},
				},
			},
		},
	)
	return err
}

func (dbService *FormsDBService) CreateAccessToken(token formTypes.AccessToken) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := dbService.collectionAccessTokens().InsertOne(ctx, token)
	return err
}

func (dbService *FormsDBService) GetAccessToken(token string) (at formTypes.AccessToken, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	err = dbService.collectionAccessTokens().FindOne(ctx, bson.M{"token": token}).Decode(&at)
	return at, err
}

func (dbService *FormsDBService) GetAccessTokensForForm(formID string) (tokens []formTypes.AccessToken, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return tokens, err
	}

	cursor, err := dbService.collectionAccessTokens().Find(ctx, bson.M{"formID": _id})
	if err != nil {
		return tokens, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &tokens)
	return tokens, err
}

func (dbService *FormsDBService) DeleteAccessToken(token string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionAccessTokens().DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("no access token found")
	}
	return nil
}

// DeleteExpiredAccessTokens removes tokens whose expiration has passed.
// Tokens without an expiration are kept.
func (dbService *FormsDBService) DeleteExpiredAccessTokens() (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"expiresAt": bson.M{
			"$gt": time.Time{},
			"$lt": time.Now(),
		},
	}
	res, err := dbService.collectionAccessTokens().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (dbService *FormsDBService) DeleteAccessTokensForForm(formID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, err
	}

	res, err := dbService.collectionAccessTokens().DeleteMany(ctx, bson.M{"formID": _id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
