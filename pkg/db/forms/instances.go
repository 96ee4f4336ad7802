package forms

import (
	"errors"
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *FormsDBService) CreateFormInstance(instance formTypes.FormInstance) (formTypes.FormInstance, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	instance.ID = primitive.NewObjectID()
	instance.CreatedAt = time.Now()
	if instance.Status == "" {
		instance.Status = formTypes.FORM_STATUS_DRAFT
	}

	_, err := dbService.collectionFormInstances().InsertOne(ctx, instance)
	return instance, err
}

func (dbService *FormsDBService) GetFormInstanceByID(id string) (instance formTypes.FormInstance, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return instance, err
	}

	err = dbService.collectionFormInstances().FindOne(ctx, bson.M{"_id": _id}).Decode(&instance)
	return instance, err
}

func (dbService *FormsDBService) GetFormInstances(filter bson.M, page int64, limit int64) (instances []formTypes.FormInstance, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.collectionFormInstances().CountDocuments(ctx, filter)
	if err != nil {
		return instances, nil, err
	}

	paginationInfo = prepPaginationInfos(totalCount, page, limit)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetSkip(skip).SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionFormInstances().Find(ctx, filter, opts)
	if err != nil {
		return instances, nil, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &instances)
	if err != nil {
		return instances, nil, err
	}
	return instances, paginationInfo, nil
}

// MarkFormInstanceSubmitted flips a draft to submitted. The update filter
// includes the draft status so concurrent submits cannot double-fire the
// downstream CRM sync.
func (dbService *FormsDBService) MarkFormInstanceSubmitted(id string, submittedByEmail string, isTestSubmission bool) (instance formTypes.FormInstance, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return instance, err
	}

	filter := bson.M{
		"_id":    _id,
		"status": formTypes.FORM_STATUS_DRAFT,
	}
	update := bson.M{"$set": bson.M{
		"status":           formTypes.FORM_STATUS_SUBMITTED,
		"submittedAt":      time.Now(),
		"submittedByEmail": submittedByEmail,
		"isTestSubmission": isTestSubmission,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err = dbService.collectionFormInstances().FindOneAndUpdate(ctx, filter, update, opts).Decode(&instance)
	return instance, err
}

func (dbService *FormsDBService) UpdateFormInstanceCRMSyncState(id string, status string, syncError string, needsAttention bool) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"crmSyncStatus":  status,
		"crmSyncError":   syncError,
		"needsAttention": needsAttention,
	}}

	res, err := dbService.collectionFormInstances().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("no form instance found with the given id")
	}
	return nil
}

func (dbService *FormsDBService) UpdateFormInstanceCRMDealID(id string, dealID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"crmDealID": dealID,
	}}

	res, err := dbService.collectionFormInstances().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("no form instance found with the given id")
	}
	return nil
}

func (dbService *FormsDBService) DeleteFormInstance(id string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := dbService.collectionFormInstances().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("no form instance found with the given id")
	}
	return nil
}
