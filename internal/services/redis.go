package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	featuredKey         = "cars:featured"
	featuredTTL         = 5 * time.Minute
	AvailabilityChannel = "car:availability"
)

// InitRedis connects to redisURL and checks the connection.
func InitRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	return client, nil
}

// CarCache is a FeaturedCache backed by redis. Cache errors are logged
// and treated as misses.
type CarCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCarCache(client *redis.Client) *CarCache {
	return &CarCache{client: client, ttl: featuredTTL}
}

func (c *CarCache) GetFeatured(ctx context.Context) ([]models.Car, bool) {
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "featured cache read failed", "error", err)
		}
		return nil, false
	}

	var cars []models.Car
	if err := json.Unmarshal(data, &cars); err != nil {
		slog.WarnContext(ctx, "featured cache decode failed", "error", err)
		return nil, false
	}
	return cars, true
}

func (c *CarCache) SetFeatured(ctx context.Context, cars []models.Car) {
	data, err := json.Marshal(cars)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, featuredKey, data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "featured cache write failed", "error", err)
	}
}

func (c *CarCache) InvalidateFeatured(ctx context.Context) {
	if err := c.client.Del(ctx, featuredKey).Err(); err != nil {
		slog.WarnContext(ctx, "featured cache invalidate failed", "error", err)
	}
}

// AvailabilityEvent is published whenever a car changes availability.
type AvailabilityEvent struct {
	Type               string                    `json:"type"`
	CarID              string                    `json:"carId"`
	BookingID          string                    `json:"bookingId,omitempty"`
	AvailabilityStatus models.AvailabilityStatus `json:"availabilityStatus"`
	Timestamp          int64                     `json:"timestamp"`
}

func bookedEvent(b *models.Booking) AvailabilityEvent {
	return AvailabilityEvent{
		Type:               "car_booked",
		CarID:              b.CarID.Hex(),
		BookingID:          b.ID.Hex(),
		AvailabilityStatus: models.AvailabilityBooked,
		Timestamp:          b.BookingDate.Unix(),
	}
}

// RedisPublisher announces bookings on the availability channel so other
// instances can update their subscribers.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) BookingCreated(ctx context.Context, b *models.Booking) {
	data, err := json.Marshal(bookedEvent(b))
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, AvailabilityChannel, data).Err(); err != nil {
		slog.WarnContext(ctx, "publish availability failed", "error", err, "car_id", b.CarID.Hex())
	}
}
