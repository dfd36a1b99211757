package application

import (
	"github.com/conceptlab/backend/internal/application/concept"
	"github.com/conceptlab/backend/internal/application/deliverable"
	"github.com/conceptlab/backend/internal/application/devloop"
	"github.com/conceptlab/backend/internal/application/export"
	"github.com/conceptlab/backend/internal/application/pipeline"
	"github.com/google/wire"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	pipeline.ProviderSet,
	concept.ProviderSet,
	deliverable.ProviderSet,
	devloop.ProviderSet,
	export.ProviderSet,
)
