package notify

import (
	"context"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes notification payloads on per-recipient pub/sub
// channels. Delivery is fire-and-forget: publish failures are logged, not
// surfaced, and a recipient with no subscribers simply misses the event.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// VendorChannel is the pub/sub channel a vendor listens on.
func VendorChannel(vendorID string) string {
	return "notify:vendor:" + vendorID
}

// CustomerChannel is the pub/sub channel a customer listens on.
func CustomerChannel(customerID string) string {
	return "notify:customer:" + customerID
}

func (n *RedisNotifier) NotifyVendor(ctx context.Context, vendorID string, payload []byte) error {
	return n.publish(ctx, VendorChannel(vendorID), payload)
}

func (n *RedisNotifier) NotifyCustomer(ctx context.Context, customerID string, payload []byte) error {
	return n.publish(ctx, CustomerChannel(customerID), payload)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, payload []byte) error {
	if len(payload) == 0 {
		return errors.New("notify: empty payload")
	}

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("notify publish failed: channel=%s err=%v", channel, err)
	}
	return nil
}
