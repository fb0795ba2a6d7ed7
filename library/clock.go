package library

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"library-ledger/internal/logger"
)

// Clock advances the library day on a cron schedule, e.g. "@every 10s".
type Clock struct {
	cron    *cron.Cron
	manager *Manager

	mu      sync.Mutex
	running bool
}

// NewClock registers the day tick under schedule.
func NewClock(manager *Manager, schedule string) (*Clock, error) {
	c := &Clock{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		manager: manager,
	}
	if _, err := c.cron.AddFunc(schedule, func() { c.Tick() }); err != nil {
		return nil, fmt.Errorf("invalid clock schedule %q: %w", schedule, err)
	}
	return c, nil
}

// Tick advances the ledger by one day.
func (c *Clock) Tick() int {
	day := c.manager.AdvanceDay(1)
	logger.WithService("clock").Info("new day", "day", day)
	return day
}

// Start begins the cron scheduler
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.cron.Start()
	c.running = true
}

// Stop halts the scheduler and waits for a running tick to finish.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	<-c.cron.Stop().Done()
	c.running = false
}

// Running reports whether the scheduler has been started.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
