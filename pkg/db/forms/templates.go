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

func (dbService *FormsDBService) createIndexForFormTemplates() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionFormTemplates().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "slug", Value: 1},
					{Key: "version", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
				},
			},
		},
	)
	return err
}

func (dbService *FormsDBService) CreateFormTemplate(template formTypes.FormTemplate) (formTypes.FormTemplate, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	_, err := dbService.collectionFormTemplates().InsertOne(ctx, template)
	return template, err
}

func (dbService *FormsDBService) GetFormTemplateByID(id string) (template formTypes.FormTemplate, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return template, err
	}

	err = dbService.collectionFormTemplates().FindOne(ctx, bson.M{"_id": _id}).Decode(&template)
	return template, err
}

// GetActiveFormTemplateBySlug returns the newest active revision of the
// template with the given slug.
func (dbService *FormsDBService) GetActiveFormTemplateBySlug(slug string) (template formTypes.FormTemplate, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"slug":   slug,
		"status": formTypes.TEMPLATE_STATUS_ACTIVE,
	}
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	err = dbService.collectionFormTemplates().FindOne(ctx, filter, opts).Decode(&template)
	return template, err
}

func (dbService *FormsDBService) GetFormTemplates(filter bson.M, page int64, limit int64) (templates []formTypes.FormTemplate, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.collectionFormTemplates().CountDocuments(ctx, filter)
	if err != nil {
		return templates, nil, err
	}

	paginationInfo = prepPaginationInfos(totalCount, page, limit)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetSkip(skip).SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionFormTemplates().Find(ctx, filter, opts)
	if err != nil {
		return templates, nil, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &templates)
	if err != nil {
		return templates, nil, err
	}
	return templates, paginationInfo, nil
}

// UpdateFormTemplate replaces the mutable fields of a template and bumps
// updatedAt. Callers invalidate any cached schema for the template after a
// successful update.
func (dbService *FormsDBService) UpdateFormTemplate(id string, template formTypes.FormTemplate) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"slug":         template.Slug,
		"productCode":  template.ProductCode,
		"industryCode": template.IndustryCode,
		"version":      template.Version,
		"status":       template.Status,
		"questions":    template.Questions,
		"updatedAt":    time.Now(),
	}}

	res, err := dbService.collectionFormTemplates().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("no template found with the given id")
	}
	return nil
}

func (dbService *FormsDBService) DeleteFormTemplate(id string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := dbService.collectionFormTemplates().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("no template found with the given id")
	}
	return nil
}
