package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	formsDB "github.com/fmb1991/broker-forms-vf/pkg/db/forms"
	"github.com/fmb1991/broker-forms-vf/pkg/export"
	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	formsDBConn       *formsDB.FormsDBService
	renderer          *engine.Renderer
	store             *filestore.Store
	adminSecret       string
	sessionSignKey    string
	sessionExpiresIn  time.Duration
	useSecureCookies  bool
	publicFormBaseURL string
	pdfOptions        export.PDFOptions
}

func NewHTTPHandler(
	formsDBConn *formsDB.FormsDBService,
	store *filestore.Store,
	adminSecret string,
	sessionSignKey string,
	sessionExpiresIn time.Duration,
	useSecureCookies bool,
	publicFormBaseURL string,
	pdfOptions export.PDFOptions,
) *HttpEndpoints {
	return &HttpEndpoints{
		formsDBConn:       formsDBConn,
		renderer:          engine.NewRenderer(),
		store:             store,
		adminSecret:       adminSecret,
		sessionSignKey:    sessionSignKey,
		sessionExpiresIn:  sessionExpiresIn,
		useSecureCookies:  useSecureCookies,
		publicFormBaseURL: publicFormBaseURL,
		pdfOptions:        pdfOptions,
	}
}
