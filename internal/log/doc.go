// Package log builds the slog loggers used by ttscrape.
//
// Every logger returned here redacts credentials: the batch-insert API key,
// PostgreSQL DSNs and passwords embedded in connection URLs. Redaction
// applies at every level, so verbose output can be pasted into an issue
// without leaking the warehouse key.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("uploading", "url", cfg.UploadURL, "api_key", cfg.UploadAPIKey)
//	// url=https://warehouse.example api_key=***REDACTED***
package log
