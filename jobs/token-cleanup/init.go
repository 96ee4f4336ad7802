package main

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/fmb1991/broker-forms-vf/pkg/db"
	"github.com/fmb1991/broker-forms-vf/pkg/utils"

	formsDB "github.com/fmb1991/broker-forms-vf/pkg/db/forms"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_FORMS_DB_USERNAME = "FORMS_DB_USERNAME"
	ENV_FORMS_DB_PASSWORD = "FORMS_DB_PASSWORD"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		FormsDB db.DBConfigYaml `json:"forms_db" yaml:"forms_db"`
	} `json:"db_configs" yaml:"db_configs"`
}

var (
	conf           config
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

	// Init DBs
	initDBs()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_FORMS_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.FormsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_FORMS_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.FormsDB.Password = dbPassword
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
