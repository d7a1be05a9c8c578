package main

import (
	"context"

	"github.com/echoscribe/echoscribe/component"
	"github.com/echoscribe/echoscribe/sse"
	"github.com/echoscribe/echoscribe/store"
)

// storeComponent adapts the SQLite store to the component lifecycle so the
// health endpoint can report on it. The store is opened before the registry
// starts; Start only verifies the connection.
type storeComponent struct {
	st *store.Store
}

func (c *storeComponent) Name() string { return "store" }

func (c *storeComponent) Start(ctx context.Context) error {
	return c.st.Ping(ctx)
}

func (c *storeComponent) Stop(ctx context.Context) error {
	return c.st.Close()
}

func (c *storeComponent) Health(ctx context.Context) component.Health {
	if err := c.st.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// hubComponent runs the SSE hub's dispatch loop as a managed component.
type hubComponent struct {
	hub *sse.Hub
}

func (c *hubComponent) Name() string { return "sse" }

func (c *hubComponent) Start(ctx context.Context) error {
	go c.hub.Run()
	return nil
}

func (c *hubComponent) Stop(ctx context.Context) error {
	c.hub.Stop()
	return nil
}

func (c *hubComponent) Health(ctx context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}
