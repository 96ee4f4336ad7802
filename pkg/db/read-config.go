package db

import (
	"fmt"
	"log/slog"
)

func DBConfigFromYamlObj(yamlObj DBConfigYaml) DBConfig {
	if yamlObj.ConnectionStr == "" || yamlObj.Username == "" || yamlObj.Password == "" {
		slog.Error("couldn't read DB credentials")
		panic("couldn't read DB credentials")
	}
	URI := fmt.Sprintf(`mongodb%s://%s:%s@%s`, yamlObj.ConnectionPrefix, yamlObj.Username, yamlObj.Password, yamlObj.ConnectionStr)

	timeout := yamlObj.Timeout
	if timeout < 1 {
		timeout = 30
	}
	idleConnTimeout := yamlObj.IdleConnTimeout
	if idleConnTimeout < 1 {
		idleConnTimeout = 45
	}
	maxPoolSize := yamlObj.MaxPoolSize
	if maxPoolSize < 1 {
		maxPoolSize = 4
	}

	return DBConfig{
		URI:              URI,
		Timeout:          timeout,
		IdleConnTimeout:  idleConnTimeout,
		MaxPoolSize:      uint64(maxPoolSize),
		NoCursorTimeout:  yamlObj.UseNoCursorTimeout,
		DBNamePrefix:     yamlObj.DBNamePrefix,
		RunIndexCreation: yamlObj.RunIndexCreation,
	}
}
