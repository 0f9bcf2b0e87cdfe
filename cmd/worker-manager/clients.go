// cmd/worker-manager/clients.go
package main

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"query-intent-workers/internal/common/database"
)

// pgDB and redisClient unwrap optional connections so handlers can tell
// "not configured" apart with a plain nil check.

func pgDB(pg *database.PostgresClient) *sql.DB {
	if pg == nil {
		return nil
	}
	return pg.DB
}

func redisClient(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
