//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"worldfund-api/internal/app"
	"worldfund-api/internal/database"
	"worldfund-api/internal/observability"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		InfraSet,
		SecuritySet,
		RepositorySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		ConfigSet,
		wire.NewSet(observability.NewLogger),
		database.Open,
		NewMigrationRunner,
	))
}
