package forms

import (
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) createIndexForTableRows() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionTableRows().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "formID", Value: 1},
					{Key: "questionCode", Value: 1},
					{Key: "rowIndex", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
	)
	return err
}

// UpsertTableRow replaces the full row map for one (form, question, row
// index) triple.
func (dbService *FormsDBService) UpsertTableRow(formID string, questionCode string, rowIndex int, row map[string]interface{}) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"formID":       _id,
		"questionCode": questionCode,
		"rowIndex":     rowIndex,
	}
	update := bson.M{"$set": bson.M{
		"row":       row,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	_, err = dbService.collectionTableRows().UpdateOne(ctx, filter, update, opts)
	return err
}

func (dbService *FormsDBService) GetTableRowsForQuestion(formID string, questionCode string) (rows []formTypes.TableRow, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return rows, err
	}

	filter := bson.M{
		"formID":       _id,
		"questionCode": questionCode,
	}
	opts := options.Find().SetSort(bson.M{"rowIndex": 1})

	cursor, err := dbService.collectionTableRows().Find(ctx, filter, opts)
	if err != nil {
		return rows, err
	}
	defer cursor.Close(ctx)

	docs := []formTypes.TableRowDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return rows, err
	}

	rows = make([]formTypes.TableRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, formTypes.TableRow{RowIndex: d.RowIndex, Row: d.Row})
	}
	return rows, nil
}

// GetTableRowsForForm returns all persisted rows of a form grouped by
// question code, ordered by row index within each group.
func (dbService *FormsDBService) GetTableRowsForForm(formID string) (map[string][]formTypes.TableRow, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "questionCode", Value: 1},
		{Key: "rowIndex", Value: 1},
	})

	cursor, err := dbService.collectionTableRows().Find(ctx, bson.M{"formID": _id}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []formTypes.TableRowDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	grouped := map[string][]formTypes.TableRow{}
	for _, d := range docs {
		grouped[d.QuestionCode] = append(grouped[d.QuestionCode], formTypes.TableRow{RowIndex: d.RowIndex, Row: d.Row})
	}
	return grouped, nil
}

func (dbService *FormsDBService) DeleteTableRowsForForm(formID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, err
	}

	res, err := dbService.collectionTableRows().DeleteMany(ctx, bson.M{"formID": _id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
