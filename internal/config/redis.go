package config

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client that backs seat holds, the
// seat-map response cache and the payment-return rate limit.  Supported
// variables:
//
//	REDIS_HOST, REDIS_PORT - server address
//	REDIS_ADDR             - host:port shorthand (host/port win when both are set)
//	REDIS_PASSWORD         - optional password
//	REDIS_DB               - database number, default 0
//	REDIS_TLS              - enable TLS when "true" or "1"
//
// Returns nil when the server cannot be reached.  Seat holds cannot work
// without Redis, so main treats nil as fatal; the cache and rate-limit
// middleware merely disable themselves on a nil client.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	dbNum := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
