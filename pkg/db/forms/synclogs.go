package forms

import (
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) createIndexForCRMSyncLogs() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionCRMSyncLogs().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "formID", Value: 1},
					{Key: "createdAt", Value: -1},
				},
			},
		},
	)
	return err
}

// AddCRMSyncLog appends one sync step record. Logging failures are the
// caller's problem to report, never to propagate into the user flow.
func (dbService *FormsDBService) AddCRMSyncLog(formID string, action string, details map[string]interface{}) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return err
	}

	log := formTypes.CRMSyncLog{
		ID:        primitive.NewObjectID(),
		FormID:    _id,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	_, err = dbService.collectionCRMSyncLogs().InsertOne(ctx, log)
	return err
}

func (dbService *FormsDBService) GetCRMSyncLogsForForm(formID string, page int64, limit int64) (logs []formTypes.CRMSyncLog, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return logs, nil, err
	}

	filter := bson.M{"formID": _id}

	totalCount, err := dbService.collectionCRMSyncLogs().CountDocuments(ctx, filter)
	if err != nil {
		return logs, nil, err
	}

	paginationInfo = prepPaginationInfos(totalCount, page, limit)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetSkip(skip).SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionCRMSyncLogs().Find(ctx, filter, opts)
	if err != nil {
		return logs, nil, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &logs)
	if err != nil {
		return logs, nil, err
	}
	return logs, paginationInfo, nil
}
