package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/fmb1991/broker-forms-vf/pkg/apihelpers"
	"github.com/fmb1991/broker-forms-vf/pkg/crm"
	"github.com/fmb1991/broker-forms-vf/pkg/db"
	"github.com/fmb1991/broker-forms-vf/pkg/smtpclient"
	"github.com/fmb1991/broker-forms-vf/pkg/utils"

	formsDB "github.com/fmb1991/broker-forms-vf/pkg/db/forms"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_FORMS_DB_USERNAME    = "FORMS_DB_USERNAME"
	ENV_FORMS_DB_PASSWORD    = "FORMS_DB_PASSWORD"
	ENV_UPLOAD_SIGN_SECRET   = "UPLOAD_SIGN_SECRET"
	ENV_HUBSPOT_ACCESS_TOKEN = "HUBSPOT_ACCESS_TOKEN"
	ENV_SMTP_USERNAME        = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD        = "SMTP_PASSWORD"
)

type ClientApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// DB configs
	DBConfigs struct {
		FormsDB db.DBConfigYaml `json:"forms_db" yaml:"forms_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Upload configs
	UploadConfig struct {
		SignSecret       string        `json:"sign_secret" yaml:"sign_secret"`
		GrantTTL         time.Duration `json:"grant_ttl" yaml:"grant_ttl"`
		DefaultMaxMB     int           `json:"default_max_mb" yaml:"default_max_mb"`
		RawUploadBaseURL string        `json:"raw_upload_base_url" yaml:"raw_upload_base_url"`
	} `json:"upload_config" yaml:"upload_config"`

	FilestorePath string `json:"filestore_path" yaml:"filestore_path"`

	// CRM deal pipeline configs
	CRMConfig struct {
		HubspotAccessToken string                   `json:"hubspot_access_token" yaml:"hubspot_access_token"`
		RequestTimeout     time.Duration            `json:"request_timeout" yaml:"request_timeout"`
		Pipeline           string                   `json:"pipeline" yaml:"pipeline"`
		SubmittedDealStage string                   `json:"submitted_deal_stage" yaml:"submitted_deal_stage"`
		TestSubmission     crm.TestSubmissionConfig `json:"test_submission" yaml:"test_submission"`
	} `json:"crm_config" yaml:"crm_config"`

	// Submission notification configs
	NotificationConfig struct {
		SendTo               []string `json:"send_to" yaml:"send_to"`
		AdminBaseURL         string   `json:"admin_base_url" yaml:"admin_base_url"`
		SmtpServerConfigPath string   `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
	} `json:"notification_config" yaml:"notification_config"`
}

var (
	conf           ClientApiConfig
	formsDBService *formsDB.FormsDBService
	smtpClients    *smtpclient.SmtpClients
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	checkFilestorePath()

	initSmtpClients()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_FORMS_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.FormsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_FORMS_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.FormsDB.Password = dbPassword
	}

	if signSecret := os.Getenv(ENV_UPLOAD_SIGN_SECRET); signSecret != "" {
		conf.UploadConfig.SignSecret = signSecret
	}

	if hubspotToken := os.Getenv(ENV_HUBSPOT_ACCESS_TOKEN); hubspotToken != "" {
		conf.CRMConfig.HubspotAccessToken = hubspotToken
	}
}

func initDBs() {
	var err error
	formsDBService, err = formsDB.NewFormsDBService(db.DBConfigFromYamlObj(conf.DBConfigs.FormsDB))
	if err != nil {
		slog.Error("Error connecting to Forms DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func checkFilestorePath() {
	// To store uploaded attachments
	fsPath := conf.FilestorePath
	if fsPath == "" {
		slog.Error("Filestore path not set")
		panic("Filestore path not set")
	}

	if _, err := os.Stat(fsPath); os.IsNotExist(err) {
		slog.Error("Filestore path does not exist", slog.String("path", fsPath))
		panic("Filestore path does not exist")
	}
}

func initSmtpClients() {
	if conf.NotificationConfig.SmtpServerConfigPath == "" {
		slog.Warn("no SMTP server config set, submission notifications are disabled")
		return
	}

	serverList := smtpclient.SmtpServerList{}
	if err := serverList.ReadFromFile(conf.NotificationConfig.SmtpServerConfigPath); err != nil {
		slog.Error("Error reading SMTP server config", slog.String("error", err.Error()))
		panic(err)
	}

	if username := os.Getenv(ENV_SMTP_USERNAME); username != "" {
		for i := range serverList.Servers {
			serverList.Servers[i].SetUsername(username)
		}
	}
	if password := os.Getenv(ENV_SMTP_PASSWORD); password != "" {
		for i := range serverList.Servers {
			serverList.Servers[i].SetPassword(password)
		}
	}

	var err error
	smtpClients, err = smtpclient.NewSmtpClients(serverList)
	if err != nil {
		slog.Error("Error initialising SMTP clients", slog.String("error", err.Error()))
		panic(err)
	}
}

func newCRMSyncer() *crm.Syncer {
	hubspotClient := crm.NewHubSpotClient(
		conf.CRMConfig.HubspotAccessToken,
		conf.CRMConfig.RequestTimeout,
	)

	return crm.NewSyncer(
		formsDBService,
		hubspotClient,
		conf.CRMConfig.Pipeline,
		conf.CRMConfig.SubmittedDealStage,
		conf.CRMConfig.TestSubmission,
	)
}
