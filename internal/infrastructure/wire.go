package infrastructure

import (
	"github.com/conceptlab/backend/internal/infrastructure/analysis"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/eventbus"
	"github.com/conceptlab/backend/internal/infrastructure/llm"
	"github.com/conceptlab/backend/internal/infrastructure/storage"
	"github.com/conceptlab/backend/internal/infrastructure/websocket"
	"github.com/google/wire"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	websocket.ProviderSet,
	eventbus.ProviderSet,
	analysis.ProviderSet,
	llm.ProviderSet,
)
