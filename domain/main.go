package domain

import (
	"github.com/akeren/go-waitlist/config"
	"github.com/akeren/go-waitlist/domain/monitoring"
	"github.com/akeren/go-waitlist/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	// A nil config.Cache must stay a nil interface on the other side.
	var healthCache monitoring.Cache
	var entriesCache waitlist.Cache
	if appConfig.Cache != nil {
		healthCache = appConfig.Cache
		entriesCache = appConfig.Cache
	}

	appConfig.RouterService.MountController(monitoring.NewMonitoringController(appConfig.DB, healthCache))

	factory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		appConfig.Logger,
		entriesCache,
		appConfig.Config.CacheTTL,
		appConfig.RouterService.MetricsRegistry(),
	)
	appConfig.RouterService.MountController(factory.CreateController())
}
