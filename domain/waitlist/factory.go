package waitlist

import (
	"time"

	"github.com/akeren/go-waitlist/config/router"
	"github.com/akeren/go-waitlist/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateRepository() WaitlistRepository
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db       *gorm.DB
	logger   *log.Logger
	cache    Cache
	cacheTTL time.Duration
	registry prometheus.Registerer
}

// NewWaitlistServiceFactory wires the waitlist domain. cache and registry are optional.
func NewWaitlistServiceFactory(
	db *gorm.DB,
	logger *log.Logger,
	cache Cache,
	cacheTTL time.Duration,
	registry prometheus.Registerer,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:       db,
		logger:   logger,
		cache:    cache,
		cacheTTL: cacheTTL,
		registry: registry,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateRepository() WaitlistRepository {
	repository := NewWaitlistRepository(f.db)
	if f.cache == nil {
		return repository
	}

	f.logger.Info("Waitlist entries cached in Redis", "key", entriesCacheKey, "ttl", f.cacheTTL)
	return NewCachedWaitlistRepository(repository, f.cache, f.cacheTTL, f.logger)
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.logger, f.CreateRepository(), NewMetrics(f.registry))
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService())
}
