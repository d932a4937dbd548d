package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const spacesListTTL = 30 * time.Second

type Config struct {
	Addr     string
	Password string
	AuthKey  string
}

type ValkeyClient struct {
	client  *redis.Client
	authKey string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.AuthKey == "" {
		cfg.AuthKey = "users:auth"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:  rdb,
		authKey: cfg.AuthKey,
	}, nil
}

// GetUserByAuth looks up a cached identity by email and password hash. The
// cached value is "userID:role".
func (v *ValkeyClient) GetUserByAuth(ctx context.Context, email, passwordHash string) (string, string, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	value, err := v.client.HGet(ctx, v.authKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", "", fmt.Errorf("user not found in cache")
		}
		return "", "", fmt.Errorf("cache lookup error: %w", err)
	}

	userID, role, ok := strings.Cut(value, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid auth entry in cache")
	}

	return userID, role, nil
}

// SetUserAuth caches a verified identity for subsequent Basic Auth checks.
func (v *ValkeyClient) SetUserAuth(ctx context.Context, email, passwordHash, userID, role string) error {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))
	return v.client.HSet(ctx, v.authKey, cacheKey, userID+":"+role).Err()
}

// GetSpacesListRaw returns the cached spaces-list response as raw JSON to
// avoid an unmarshal/marshal round trip on the hot path.
func (v *ValkeyClient) GetSpacesListRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := v.client.Get(ctx, "spaces:list:"+key).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetSpacesList caches a spaces-list response with a short TTL.
func (v *ValkeyClient) SetSpacesList(ctx context.Context, key string, response interface{}) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return v.client.Set(ctx, "spaces:list:"+key, data, spacesListTTL).Err()
}

// InvalidateSpacesList drops all cached spaces-list responses, e.g. after a
// staff space update.
func (v *ValkeyClient) InvalidateSpacesList(ctx context.Context) error {
	iter := v.client.Scan(ctx, 0, "spaces:list:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := v.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
