// Package logger provides a structured logging interface for the collector.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "steamcollect/pkg/logger"
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("Collection run starting")
//	logger.WithField("app_id", 440).Info("Game accepted")
//	logger.WithError(err).Error("Failed to upsert game")
package logger
