package store

import (
	"context"
	"errors"
)

// ErrServiceNotFound reports that no service owns the gateway account
// an event refers to. Redelivery cannot fix this, so callers drop the
// event rather than retry it.
var ErrServiceNotFound = errors.New("no service found for gateway account")

// Service is the locally stored service record owning one or more
// gateway accounts.
type Service struct {
	ExternalID string
	Name       string
}

// User is an administrator of a service, resolved as a notification
// recipient.
type User struct {
	ExternalID string
	Email      string
}

// Store reads the service/user records maintained by the admin
// application. This pipeline only ever reads.
type Store interface {
	FindServiceByGatewayAccountID(ctx context.Context, gatewayAccountID string) (*Service, error)
	FindAdminUsers(ctx context.Context, serviceExternalID string) ([]User, error)
}
