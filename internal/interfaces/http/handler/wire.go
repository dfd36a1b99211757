package handler

import "github.com/google/wire"

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewConceptHandler,
	NewSessionHandler,
	NewDevLoopHandler,
	NewAnalysisHandler,
	NewDeliverableHandler,
	NewExportHandler,
	NewWebSocketHandler,
)
