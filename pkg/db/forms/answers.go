package forms

import (
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) createIndexForAnswers() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionAnswers().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "formID", Value: 1},
					{Key: "questionCode", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
	)
	return err
}

// UpsertAnswer writes the full answer value for one (form, question)
// pair. Saves are idempotent and last-write-wins.
func (dbService *FormsDBService) UpsertAnswer(formID string, questionCode string, value interface{}) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"formID":       _id,
		"questionCode": questionCode,
	}
	update := bson.M{"$set": bson.M{
		"value":     value,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	_, err = dbService.collectionAnswers().UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAnswersForForm returns the stored answers keyed by question code.
func (dbService *FormsDBService) GetAnswersForForm(formID string) (map[string]interface{}, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, err
	}

	cursor, err := dbService.collectionAnswers().Find(ctx, bson.M{"formID": _id})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []formTypes.AnswerDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	answers := make(map[string]interface{}, len(docs))
	for _, d := range docs {
		answers[d.QuestionCode] = d.Value
	}
	return answers, nil
}

func (dbService *FormsDBService) DeleteAnswersForForm(formID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, err
	}

	res, err := dbService.collectionAnswers().DeleteMany(ctx, bson.M{"formID": _id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
