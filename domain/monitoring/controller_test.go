package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/akeren/go-waitlist/config/router"
	"github.com/akeren/go-waitlist/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubCache struct {
	err error
}

func (s stubCache) Ping(context.Context) error { return s.err }

type healthResponse struct {
	Code    int          `json:"code"`
	Data    HealthStatus `json:"data"`
	Message string       `json:"message"`
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "health.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func getHealth(t *testing.T, db *gorm.DB, cache Cache) (int, healthResponse) {
	t.Helper()
	t.Setenv("METRICS_ENABLED", "false")

	rs := router.CreateRouterService(log.NewLoggerWithJSONOutput(), &router.RouterConfig{RequestTimeout: 5 * time.Second})
	rs.MountController(NewMonitoringController(db, cache))

	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         func(t *testing.T) *gorm.DB
		cache      Cache
		wantCode   int
		wantStatus HealthStatus
	}{
		{
			name:       "healthy without cache",
			db:         openDB,
			wantCode:   http.StatusOK,
			wantStatus: HealthStatus{Database: 1, Cache: 0},
		},
		{
			name:       "healthy with cache",
			db:         openDB,
			cache:      stubCache{},
			wantCode:   http.StatusOK,
			wantStatus: HealthStatus{Database: 1, Cache: 1},
		},
		{
			name:       "cache down is not fatal",
			db:         openDB,
			cache:      stubCache{err: errors.New("connection refused")},
			wantCode:   http.StatusOK,
			wantStatus: HealthStatus{Database: 1, Cache: 0},
		},
		{
			name: "database closed",
			db: func(t *testing.T) *gorm.DB {
				db := openDB(t)
				sqlDB, err := db.DB()
				require.NoError(t, err)
				require.NoError(t, sqlDB.Close())
				return db
			},
			cache:      stubCache{},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: HealthStatus{Database: 0, Cache: 1},
		},
		{
			name:       "no database",
			db:         func(*testing.T) *gorm.DB { return nil },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: HealthStatus{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := getHealth(t, tt.db(t), tt.cache)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus.Database, body.Data.Database)
			assert.Equal(t, tt.wantStatus.Cache, body.Data.Cache)
			assert.GreaterOrEqual(t, body.Data.Uptime, 0)
		})
	}
}
