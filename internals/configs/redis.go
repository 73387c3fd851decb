package configs

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis: nil kalau REDIS_ADDR kosong atau ping gagal (fitur lock dimatikan).
func ConnectRedis() *redis.Client {
	if RedisAddr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     RedisAddr,
		Password: GetEnv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed (%s): %v", RedisAddr, err)
		_ = rdb.Close()
		return nil
	}

	log.Printf("✅ Redis connected (%s)", RedisAddr)
	return rdb
}
