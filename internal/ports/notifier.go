package ports

import "context"

// Port: fire-and-forget push notifications. Delivery is not guaranteed and
// is not part of the engine's correctness; implementations log failures and
// return nil unless the payload itself is unusable.
type Notifier interface {
	NotifyVendor(ctx context.Context, vendorID string, payload []byte) error
	NotifyCustomer(ctx context.Context, customerID string, payload []byte) error
}
