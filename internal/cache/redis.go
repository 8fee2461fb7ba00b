package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardStatsKey = "dashboard:stats"
	leadKeyPrefix     = "lead:"

	leadTTL      = 5 * time.Minute
	dashboardTTL = 60 * time.Second
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: every
// accessor degrades to a miss when the client is nil.
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetCachedLead returns a cached lead snapshot as raw JSON, if present.
// Used by todo hydration to avoid refetching the same lead per todo.
func GetCachedLead(ctx context.Context, name string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, leadKeyPrefix+name).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheLead stores a lead snapshot as raw JSON.
func CacheLead(ctx context.Context, name string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, leadKeyPrefix+name, data, leadTTL)
}

// InvalidateLead drops a cached lead after its status changes.
func InvalidateLead(ctx context.Context, name string) {
	if client == nil {
		return
	}
	client.Del(ctx, leadKeyPrefix+name)
}

// GetCachedDashboardStats returns the cached dashboard summary, if present.
func GetCachedDashboardStats(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, dashboardStatsKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheDashboardStats stores the dashboard summary for a short window.
func CacheDashboardStats(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, dashboardStatsKey, data, dashboardTTL)
}

// InvalidateDashboardStats drops the summary after any accounting write.
func InvalidateDashboardStats(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, dashboardStatsKey)
}
