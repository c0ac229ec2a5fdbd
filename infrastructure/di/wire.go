//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"kith-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCatalog,
	ProvideMetrics,
	ProvideErrorHandler,
	ProvideQueryBus,
	ProvideTuning,
	ProvideHub,
	ProvideViewController,
	ProvideTuningWatcher,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
