package forms

import (
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) createIndexForFiles() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionFiles().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "formID", Value: 1},
					{Key: "questionCode", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "objectKey", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
	)
	return err
}

func (dbService *FormsDBService) SaveFileInfo(file formTypes.FileDoc) (formTypes.FileDoc, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	file.ID = primitive.NewObjectID()
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}

	_, err := dbService.collectionFiles().InsertOne(ctx, file)
	return file, err
}

func (dbService *FormsDBService) GetFileInfoByObjectKey(objectKey string) (file formTypes.FileDoc, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	err = dbService.collectionFiles().FindOne(ctx, bson.M{"objectKey": objectKey}).Decode(&file)
	return file, err
}

func (dbService *FormsDBService) GetFileInfosForForm(formID string) (files []formTypes.FileDoc, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return files, err
	}

	opts := options.Find().SetSort(bson.M{"uploadedAt": 1})
	cursor, err := dbService.collectionFiles().Find(ctx, bson.M{"formID": _id}, opts)
	if err != nil {
		return files, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &files)
	return files, err
}

func (dbService *FormsDBService) DeleteFileInfosForForm(formID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, err
	}

	res, err := dbService.collectionFiles().DeleteMany(ctx, bson.M{"formID": _id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
