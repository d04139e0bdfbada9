package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// SerializedClient guards the shared signing identity. Ledger writes signed
// by one identity must carry strictly increasing sequence numbers, so at most
// one anchor submission may be in flight at a time; concurrent issuance
// requests queue here. Reads are unaffected and pass through.
//
// Queued requests are never dropped silently: a request that cannot acquire
// the signer within maxWait fails loudly with sentinel.ErrTimeout.
type SerializedClient struct {
	inner   Client
	signer  *semaphore.Weighted
	maxWait time.Duration
}

func NewSerializedClient(inner Client, maxWait time.Duration) *SerializedClient {
	if maxWait <= 0 {
		maxWait = 90 * time.Second
	}
	return &SerializedClient{
		inner:   inner,
		signer:  semaphore.NewWeighted(1),
		maxWait: maxWait,
	}
}

func (c *SerializedClient) Anchor(ctx context.Context, req AnchorRequest) (AnchorResult, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, c.maxWait)
	defer cancel()

	if err := c.signer.Acquire(acquireCtx, 1); err != nil {
		return AnchorResult{}, fmt.Errorf("waiting for ledger signer: %w", sentinel.ErrTimeout)
	}
	defer c.signer.Release(1)

	return c.inner.Anchor(ctx, req)
}

func (c *SerializedClient) IsValid(ctx context.Context, credentialID id.CredentialID) (bool, error) {
	return c.inner.IsValid(ctx, credentialID)
}

func (c *SerializedClient) Authorize(ctx context.Context, issuerIdentity string) error {
	return c.inner.Authorize(ctx, issuerIdentity)
}

func (c *SerializedClient) RevokeAuthorization(ctx context.Context, issuerIdentity string) error {
	return c.inner.RevokeAuthorization(ctx, issuerIdentity)
}
