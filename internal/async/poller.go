package async

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller runs a job on a fixed interval, independent of user action.
// Stop must be called on shutdown so the scheduler does not keep firing
// against released resources.
type Poller struct {
	c *cron.Cron
}

// NewPoller schedules fn every interval.
func NewPoller(interval time.Duration, fn func()) (*Poller, error) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), fn); err != nil {
		return nil, err
	}
	return &Poller{c: c}, nil
}

// Start begins polling.
func (p *Poller) Start() {
	p.c.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (p *Poller) Stop() {
	ctx := p.c.Stop()
	<-ctx.Done()
}
