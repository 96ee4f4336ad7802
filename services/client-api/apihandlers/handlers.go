package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fmb1991/broker-forms-vf/pkg/crm"
	formsDB "github.com/fmb1991/broker-forms-vf/pkg/db/forms"
	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/schema"
	"github.com/fmb1991/broker-forms-vf/pkg/smtpclient"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	formsDBConn        *formsDB.FormsDBService
	renderer           *engine.Renderer
	normalizer         *schema.Normalizer
	signer             *filestore.Signer
	store              *filestore.Store
	crmSyncer          *crm.Syncer
	smtpClients        *smtpclient.SmtpClients
	notificationTo     []string
	adminBaseURL       string
	uploadBaseURL      string
	defaultMaxUploadMB int
}

func NewHTTPHandler(
	formsDBConn *formsDB.FormsDBService,
	signer *filestore.Signer,
	store *filestore.Store,
	crmSyncer *crm.Syncer,
	smtpClients *smtpclient.SmtpClients,
	notificationTo []string,
	adminBaseURL string,
	uploadBaseURL string,
	defaultMaxUploadMB int,
) *HttpEndpoints {
	return &HttpEndpoints{
		formsDBConn:        formsDBConn,
		renderer:           engine.NewRenderer(),
		normalizer:         schema.NewNormalizer(),
		signer:             signer,
		store:              store,
		crmSyncer:          crmSyncer,
		smtpClients:        smtpClients,
		notificationTo:     notificationTo,
		adminBaseURL:       adminBaseURL,
		uploadBaseURL:      uploadBaseURL,
		defaultMaxUploadMB: defaultMaxUploadMB,
	}
}
