// Command spoa-agent is the process bootstrap: parse the environment,
// build a listening socket and a tracing handle, and hand both to the
// core. Per spec.md §6 these are external collaborators the core consumes
// through narrow interfaces -- main is the one place allowed to parse
// PORT/SERVICE_NAME, dial etcd, and construct the concrete OtelTracer.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"spoa-agent/internal/acceptor"
	"spoa-agent/internal/agent"
	"spoa-agent/internal/connection"
	"spoa-agent/internal/discovery"
	"spoa-agent/internal/middleware"
	"spoa-agent/internal/spop"
	"spoa-agent/internal/tracing"
)

var errMissingPort = errors.New("PORT environment variable is required and must be an unsigned 16-bit integer")

func main() {
	port, err := requiredPort()
	if err != nil {
		log.Fatalf("spoa-agent: %v", err)
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "spoa"
	}

	tracer, shutdownTracer, err := tracing.NewOtelTracer(serviceName)
	if err != nil {
		log.Fatalf("spoa-agent: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("spoa-agent: tracer shutdown: %v", err)
		}
	}()

	registrar, deregister := maybeRegisterWithEtcd(port)
	if registrar != nil {
		defer deregister()
	}

	registry := tracing.NewRegistry()
	dispatcher := middleware.HandlerFunc(tracing.NewDispatcher(registry, tracer).Dispatch)

	handler := middleware.Chain(
		middleware.Logging(),
		middleware.Timeout(2*time.Second),
		middleware.RateLimit(500, 100),
	)(dispatcher)

	acc := acceptor.New(func(conn net.Conn) *agent.Connection {
		framer := connection.NewFramer(conn)
		return agent.NewConnection(framer, dispatchFunc(handler), agent.DefaultHello)
	})

	log.Printf("spoa-agent: listening on 0.0.0.0:%s", port)
	if err := acc.Serve("tcp", "0.0.0.0:"+port); err != nil {
		log.Fatalf("spoa-agent: %v", err)
	}
}

// dispatchFunc adapts a middleware.HandlerFunc to agent.Dispatcher.
type dispatchFunc middleware.HandlerFunc

func (f dispatchFunc) Dispatch(header spop.FrameHeader, messages []spop.Message) []spop.Action {
	return f(header, messages)
}

func requiredPort() (string, error) {
	raw := os.Getenv("PORT")
	if raw == "" {
		return "", errMissingPort
	}
	if _, err := strconv.ParseUint(raw, 10, 16); err != nil {
		return "", errMissingPort
	}
	return raw, nil
}

// maybeRegisterWithEtcd registers this agent's address in etcd only when
// ETCD_ENDPOINTS is set; otherwise discovery is skipped entirely, per
// SPEC_FULL.md §10 -- this is optional ambient infrastructure, never
// load-bearing for SPOP itself.
func maybeRegisterWithEtcd(port string) (*discovery.EtcdRegistrar, func()) {
	endpoints := os.Getenv("ETCD_ENDPOINTS")
	if endpoints == "" {
		return nil, nil
	}

	registrar, err := discovery.NewEtcdRegistrar([]string{endpoints})
	if err != nil {
		log.Printf("spoa-agent: etcd registration skipped: %v", err)
		return nil, nil
	}

	addr := "0.0.0.0:" + port
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := registrar.Register(ctx, addr, 10); err != nil {
		log.Printf("spoa-agent: etcd registration failed: %v", err)
		return nil, nil
	}

	return registrar, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registrar.Deregister(ctx, addr); err != nil {
			log.Printf("spoa-agent: etcd deregistration failed: %v", err)
		}
		registrar.Close()
	}
}
