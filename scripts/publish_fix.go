//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type LocationFixEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Background bool      `json:"background,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	// Shell House landmark point, Poly Canyon
	lat := flag.Float64("lat", 35.30812, "latitude")
	lon := flag.Float64("lon", -120.65402, "longitude")
	background := flag.Bool("background", false, "fix delivered while the app is in background")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := LocationFixEvent{
		UserID:     uuid.New(),
		Latitude:   ptr(*lat),
		Longitude:  ptr(*lon),
		Background: *background,
		Timestamp:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:location:fix",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Published fix %s (%.5f, %.5f)\n", result, *lat, *lon)
	fmt.Printf("Event data: %s\n", string(data))
}
