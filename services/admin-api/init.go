package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/fmb1991/broker-forms-vf/pkg/apihelpers"
	"github.com/fmb1991/broker-forms-vf/pkg/db"
	"github.com/fmb1991/broker-forms-vf/pkg/utils"

	formsDB "github.com/fmb1991/broker-forms-vf/pkg/db/forms"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_FORMS_DB_USERNAME      = "FORMS_DB_USERNAME"
	ENV_FORMS_DB_PASSWORD      = "FORMS_DB_PASSWORD"
	ENV_ADMIN_SECRET           = "ADMIN_SECRET"
	ENV_ADMIN_SESSION_SIGN_KEY = "ADMIN_SESSION_SIGN_KEY"
)

type AdminApiConfig struct {
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

	// Admin auth configs
	AdminAuthConfig struct {
		Secret           string        `json:"secret" yaml:"secret"`
		SessionSignKey   string        `json:"session_sign_key" yaml:"session_sign_key"`
		SessionExpiresIn time.Duration `json:"session_expires_in" yaml:"session_expires_in"`
		UseSecureCookies bool          `json:"use_secure_cookies" yaml:"use_secure_cookies"`
	} `json:"admin_auth_config" yaml:"admin_auth_config"`

	FilestorePath string `json:"filestore_path" yaml:"filestore_path"`

	// Base URL of the public questionnaire page, used to build links
	PublicFormBaseURL string `json:"public_form_base_url" yaml:"public_form_base_url"`

	// Branding printed on PDF exports
	ExportConfig struct {
		BrokerName  string `json:"broker_name" yaml:"broker_name"`
		BrokerEmail string `json:"broker_email" yaml:"broker_email"`
		BrokerPhone string `json:"broker_phone" yaml:"broker_phone"`
		LogoPath    string `json:"logo_path" yaml:"logo_path"`
	} `json:"export_config" yaml:"export_config"`
}

var (
	conf           AdminApiConfig
	formsDBService *formsDB.FormsDBService
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

	checkRequiredSecrets()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	checkFilestorePath()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_FORMS_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.FormsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_FORMS_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.FormsDB.Password = dbPassword
	}

	if adminSecret := os.Getenv(ENV_ADMIN_SECRET); adminSecret != "" {
		conf.AdminAuthConfig.Secret = adminSecret
	}

	if sessionSignKey := os.Getenv(ENV_ADMIN_SESSION_SIGN_KEY); sessionSignKey != "" {
		conf.AdminAuthConfig.SessionSignKey = sessionSignKey
	}
}

func checkRequiredSecrets() {
	if conf.AdminAuthConfig.Secret == "" || conf.AdminAuthConfig.SessionSignKey == "" {
		slog.Error("admin secret and session sign key must be configured")
		panic("admin secret and session sign key must be configured")
	}
	if conf.AdminAuthConfig.SessionExpiresIn < time.Minute {
		conf.AdminAuthConfig.SessionExpiresIn = 12 * time.Hour
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
	// Attachment exports read from the filestore
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
