package main

import (
	"log/slog"
	"time"
)

func main() {
	slog.Info("Starting token cleanup job")
	start := time.Now()

	cleanUpExpiredAccessTokens()

	slog.Info("Token cleanup job completed", slog.Duration("duration", time.Since(start)))
}

func cleanUpExpiredAccessTokens() {
	count, err := formsDBService.DeleteExpiredAccessTokens()
	if err != nil {
		slog.Error("Error cleaning up expired access tokens", slog.String("error", err.Error()))
		return
	}

	slog.Info("Clean up expired access tokens finished", slog.Int("count", int(count)))
}
