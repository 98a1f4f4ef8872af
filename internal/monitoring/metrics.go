package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskify/backend/internal/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Metrics struct {
	mu            sync.RWMutex
	RequestCount  int64            `json:"request_count"`
	ErrorCount    int64            `json:"error_count"`
	StatusCodes   map[string]int64 `json:"status_codes"`
	Endpoints     map[string]int64 `json:"endpoint_calls"`
	StartTime     time.Time        `json:"start_time"`
	LastRequest   time.Time        `json:"last_request"`
	totalDuration time.Duration
}

var globalMetrics = &Metrics{
	StatusCodes: make(map[string]int64),
	Endpoints:   make(map[string]int64),
	StartTime:   time.Now(),
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		globalMetrics.mu.Lock()
		globalMetrics.RequestCount++
		globalMetrics.totalDuration += duration
		globalMetrics.LastRequest = time.Now()
		globalMetrics.StatusCodes[strconv.Itoa(status)]++
		globalMetrics.Endpoints[c.Request.Method+" "+c.FullPath()]++
		if status >= http.StatusInternalServerError {
			globalMetrics.ErrorCount++
		}
		globalMetrics.mu.Unlock()
	}
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		globalMetrics.mu.RLock()
		defer globalMetrics.mu.RUnlock()

		var avgDuration float64
		if globalMetrics.RequestCount > 0 {
			avgDuration = float64(globalMetrics.totalDuration.Milliseconds()) / float64(globalMetrics.RequestCount)
		}

		c.JSON(http.StatusOK, gin.H{
			"request_count":           globalMetrics.RequestCount,
			"error_count":             globalMetrics.ErrorCount,
			"status_codes":            globalMetrics.StatusCodes,
			"endpoint_calls":          globalMetrics.Endpoints,
			"avg_request_duration_ms": avgDuration,
			"uptime_seconds":          time.Since(globalMetrics.StartTime).Seconds(),
		})
	}
}

// HealthHandler reports liveness of the process and its two dependencies.
// A degraded cache is reported but does not fail the check; a dead database
// does.
func HealthHandler(db *gorm.DB, cacheInstance *cache.MultiLevelCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		status := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			checks["database"] = gin.H{"status": "down", "message": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = gin.H{"status": "up"}
		}

		if cacheInstance != nil {
			if err := cacheInstance.Health(); err != nil {
				checks["cache"] = gin.H{"status": "degraded", "message": err.Error()}
			} else {
				checks["cache"] = gin.H{"status": "up", "stats": cacheInstance.Stats()}
			}
		}

		c.JSON(status, gin.H{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
