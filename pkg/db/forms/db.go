package forms

import (
	"context"
	"log/slog"
	"time"

	"github.com/fmb1991/broker-forms-vf/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_FORM_TEMPLATES = "form-templates"
	COLLECTION_NAME_FORM_INSTANCES = "form-instances"
	COLLECTION_NAME_ACCESS_TOKENS  = "form-access-tokens"
	COLLECTION_NAME_ANSWERS        = "form-answers"
	COLLECTION_NAME_TABLE_ROWS     = "form-table-rows"
	COLLECTION_NAME_FILES          = "form-files"
	COLLECTION_NAME_CRM_SYNC_LOGS  = "crm-sync-logs"
)

type FormsDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
}

func NewFormsDBService(configs db.DBConfig) (*FormsDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	formsDBSc := &FormsDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		formsDBSc.ensureIndexes()
	}
	return formsDBSc, nil
}

func (dbService *FormsDBService) getDBName() string {
	return dbService.DBNamePrefix + "broker-forms"
}

func (dbService *FormsDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *FormsDBService) collectionFormTemplates() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FORM_TEMPLATES)
}

func (dbService *FormsDBService) collectionFormInstances() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FORM_INSTANCES)
}

func (dbService *FormsDBService) collectionAccessTokens() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ACCESS_TOKENS)
}

func (dbService *FormsDBService) collectionAnswers() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ANSWERS)
}

func (dbService *FormsDBService) collectionTableRows() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_TABLE_ROWS)
}

func (dbService *FormsDBService) collectionFiles() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FILES)
}

func (dbService *FormsDBService) collectionCRMSyncLogs() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_CRM_SYNC_LOGS)
}

func (dbService *FormsDBService) ensureIndexes() {
	slog.Debug("Ensuring indexes for forms DB")

	if err := dbService.createIndexForFormTemplates(); err != nil {
		slog.Error("Error creating indexes for form templates", slog.String("error", err.Error()))
	}
	if err := dbService.createIndexForAccessTokens(); err != nil {
		slog.Error("Error creating indexes for access tokens", slog.String("error", err.Error()))
	}
	if err := dbService.createIndexForAnswers(); err != nil {
		slog.Error("Error creating indexes for answers", slog.String("error", err.Error()))
	}
	if err := dbService.createIndexForTableRows(); err != nil {
		slog.Error("Error creating indexes for table rows", slog.String("error", err.Error()))
	}
	if err := dbService.createIndexForFiles(); err != nil {
		slog.Error("Error creating indexes for files", slog.String("error", err.Error()))
	}
	if err := dbService.createIndexForCRMSyncLogs(); err != nil {
		slog.Error("Error creating indexes for CRM sync logs", slog.String("error", err.Error()))
	}
}
