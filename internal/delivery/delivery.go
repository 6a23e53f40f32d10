// Package delivery defines the inbound transport abstraction.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Implementations block in Serve
// until the server stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
