package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payadmin/internal/constants"
	"payadmin/internal/event"
	"payadmin/internal/ledger"
	"payadmin/internal/logger"
	"payadmin/internal/store"
	"payadmin/pkg/metrics"
)

// ErrNoGatewayAccount reports an event whose details carry no gateway
// account identifier, so no service can ever be resolved for it.
var ErrNoGatewayAccount = errors.New("event details carry no gateway_account_id")

// ExternalError wraps a failed call to the ledger or the local store.
// These are transient by assumption: the message should be left for
// redelivery.
type ExternalError struct {
	System string
	Cause  error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.System, e.Cause)
}

func (e *ExternalError) Unwrap() error {
	return e.Cause
}

// EnrichedEvent augments a bare event with everything the composer
// needs: the parent payment (when the event references one), the
// owning service, and its administrator recipients.
type EnrichedEvent struct {
	Transaction *ledger.Transaction
	Service     store.Service
	Admins      []store.User
}

// TransactionFetcher is the ledger lookup the enricher depends on.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, externalID string) (*ledger.Transaction, error)
}

type Enricher struct {
	ledger TransactionFetcher
	store  store.Store
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewEnricher builds an enricher. cache may be nil, in which case every
// ledger lookup goes straight to the ledger service.
func NewEnricher(fetcher TransactionFetcher, st store.Store, cache *redis.Client, ttl time.Duration, log logger.Logger) *Enricher {
	return &Enricher{
		ledger: fetcher,
		store:  st,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Enrich resolves the owning service and its admin recipients, and
// fetches the parent transaction when the event references one.
// store.ErrServiceNotFound and ErrNoGatewayAccount pass through
// unwrapped so the caller can drop the message; everything else comes
// back as an ExternalError.
func (e *Enricher) Enrich(ctx context.Context, ev event.Event) (*EnrichedEvent, error) {
	gatewayAccountID, ok := ev.DetailString("gateway_account_id")
	if !ok || gatewayAccountID == "" {
		return nil, ErrNoGatewayAccount
	}

	svc, err := e.store.FindServiceByGatewayAccountID(ctx, gatewayAccountID)
	if err != nil {
		if errors.Is(err, store.ErrServiceNotFound) {
			return nil, err
		}
		return nil, &ExternalError{System: "store", Cause: err}
	}

	admins, err := e.store.FindAdminUsers(ctx, svc.ExternalID)
	if err != nil {
		return nil, &ExternalError{System: "store", Cause: err}
	}

	enriched := &EnrichedEvent{
		Service: *svc,
		Admins:  admins,
	}

	if ev.ParentResourceExternalID != "" {
		txn, err := e.lookupTransaction(ctx, ev.ParentResourceExternalID)
		if err != nil {
			return nil, &ExternalError{System: "ledger", Cause: err}
		}
		enriched.Transaction = txn
	}

	return enriched, nil
}

func (e *Enricher) lookupTransaction(ctx context.Context, externalID string) (*ledger.Transaction, error) {
	cacheKey := constants.CacheKeyPrefixTransaction + externalID

	if e.cache != nil {
		val, err := e.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var txn ledger.Transaction
			if err := json.Unmarshal([]byte(val), &txn); err == nil {
				metrics.LedgerCacheTotal.WithLabelValues("hit").Inc()
				return &txn, nil
			}
			e.logger.WarnwCtx(ctx, "Failed to unmarshal cached transaction, refetching",
				"cache_key", cacheKey,
			)
		}
		metrics.LedgerCacheTotal.WithLabelValues("miss").Inc()
	}

	txn, err := e.ledger.GetTransaction(ctx, externalID)
	if err != nil {
		return nil, err
	}

	e.cacheTransaction(ctx, cacheKey, txn)
	return txn, nil
}

// cacheTransaction is best effort: a cache write failure only costs a
// refetch on redelivery.
func (e *Enricher) cacheTransaction(ctx context.Context, cacheKey string, txn *ledger.Transaction) {
	if e.cache == nil {
		return
	}

	bytes, err := json.Marshal(txn)
	if err != nil {
		e.logger.WarnwCtx(ctx, "Failed to marshal transaction for cache",
			"error", err,
			"cache_key", cacheKey,
		)
		return
	}

	if err := e.cache.Set(ctx, cacheKey, bytes, e.ttl).Err(); err != nil {
		e.logger.WarnwCtx(ctx, "Failed to cache transaction",
			"error", err,
			"cache_key", cacheKey,
		)
	}
}
