package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fmb1991/broker-forms-vf/pkg/apihelpers"
	"github.com/fmb1991/broker-forms-vf/pkg/export"
	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/services/admin-api/apihandlers"
)

func main() {
	store, err := filestore.NewStore(conf.FilestorePath)
	if err != nil {
		slog.Error("Error opening filestore", slog.String("error", err.Error()))
		return
	}

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")
	adminRoot := v1Root.Group("/admin")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		formsDBService,
		store,
		conf.AdminAuthConfig.Secret,
		conf.AdminAuthConfig.SessionSignKey,
		conf.AdminAuthConfig.SessionExpiresIn,
		conf.AdminAuthConfig.UseSecureCookies,
		conf.PublicFormBaseURL,
		export.PDFOptions{
			BrokerName:  conf.ExportConfig.BrokerName,
			BrokerEmail: conf.ExportConfig.BrokerEmail,
			BrokerPhone: conf.ExportConfig.BrokerPhone,
			LogoPath:    conf.ExportConfig.LogoPath,
		},
	)
	v1APIHandlers.AddAdminAuthAPI(adminRoot)
	v1APIHandlers.AddTemplateManagementAPI(adminRoot)
	v1APIHandlers.AddInstanceManagementAPI(adminRoot)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "admin-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Admin API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Admin API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Admin API", slog.String("error", err.Error()))
			return
		}
	}
}
