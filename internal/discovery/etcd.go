// Package discovery optionally advertises this agent's listen address in
// etcd, adapted from the teacher's registry.EtcdRegistry: same TTL-lease
// Register/Deregister lifecycle, minus Discover and Watch. A SPOP agent
// has no peers to discover -- HAProxy is statically configured with this
// agent's address -- so only the write side of the teacher's registry
// survives; see DESIGN.md for why Discover/Watch were dropped rather than
// adapted.
package discovery

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/spoa/agents/"

// EtcdRegistrar self-registers this agent's address under a TTL lease, so
// an operator (or a future HAProxy discovery integration) can list live
// agents without polling each one.
type EtcdRegistrar struct {
	client *clientv3.Client
}

// NewEtcdRegistrar connects to the given etcd endpoints. Callers should
// skip constructing one at all when no endpoints are configured -- this
// whole package is optional ambient infrastructure, not load-bearing for
// the protocol itself.
func NewEtcdRegistrar(endpoints []string) (*EtcdRegistrar, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, fmt.Errorf("discovery: connect etcd: %w", err)
	}
	return &EtcdRegistrar{client: c}, nil
}

// Register puts addr in etcd under a TTL-seconds lease and starts
// background keepalive renewal. If the process dies without calling
// Deregister, the lease expires and the entry disappears on its own.
func (r *EtcdRegistrar) Register(ctx context.Context, addr string, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("discovery: grant lease: %w", err)
	}

	if _, err := r.client.Put(ctx, keyPrefix+addr, "", clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("discovery: put: %w", err)
	}

	// Renewal outlives ctx, which only bounds the registration calls
	// themselves (main passes a short timeout and cancels it on return).
	ch, err := r.client.KeepAlive(context.WithoutCancel(ctx), lease.ID)
	if err != nil {
		return fmt.Errorf("discovery: keepalive: %w", err)
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes addr's entry immediately, ahead of the lease's
// natural expiry, so a graceful shutdown doesn't leave a stale entry
// visible for up to ttl seconds.
func (r *EtcdRegistrar) Deregister(ctx context.Context, addr string) error {
	if _, err := r.client.Delete(ctx, keyPrefix+addr); err != nil {
		return fmt.Errorf("discovery: deregister: %w", err)
	}
	return nil
}

// Close releases the underlying etcd client connection.
func (r *EtcdRegistrar) Close() error {
	return r.client.Close()
}
