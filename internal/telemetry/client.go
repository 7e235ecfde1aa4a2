package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/l1jgo/worldtick/internal/config"
	"go.uber.org/zap"
)

var (
	ErrDisabled         = errors.New("telemetry disabled")
	ErrConnectionFailed = errors.New("influxdb connection failed")
)

const (
	connectTimeout        = 10 * time.Second
	millisecondsPerSecond = 1000
)

// pointWriter is the subset of api.WriteAPI the client uses.
type pointWriter interface {
	WritePoint(p *write.Point)
	Flush()
}

// Client writes cycle samples to one bucket.
type Client struct {
	client influxdb2.Client // nil when built around a bare writer
	writer pointWriter
	server string
	log    *zap.Logger

	mu      sync.Mutex
	written uint64
	failed  uint64
}

// Connect pings the server and sets up a batching write API.
func Connect(cfg config.TelemetryConfig, server string, log *zap.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = 10
	}

	ic := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flush)*millisecondsPerSecond))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	healthy, err := ic.Ping(ctx)
	if err != nil {
		ic.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		ic.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	wa := ic.WriteAPI(cfg.Org, cfg.Bucket)
	c := newClient(wa, server, log)
	c.client = ic
	go c.drainErrors(wa.Errors())
	return c, nil
}

func newClient(w pointWriter, server string, log *zap.Logger) *Client {
	return &Client{writer: w, server: server, log: log}
}

func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.mu.Lock()
		c.failed++
		c.mu.Unlock()
		c.log.Warn("telemetry write failed", zap.Error(err))
	}
}

// Sample is one cycle's worth of eligibility figures.
type Sample struct {
	Cycle         uint64
	Mode          string
	Rebuilt       bool
	Objects       int // registry size
	Eligible      int // cache members
	Ticked        int
	Skipped       int
	Rebuilds      uint64
	Invalidations uint64
	Failures      uint64
	RebuildTime   time.Duration
	ByReason      map[string]int
	At            time.Time
}

// WriteCycle queues s as a "tick_cycle" point plus one "tick_reason" point
// per verdict reason.
func (c *Client) WriteCycle(s Sample) {
	if c == nil {
		return
	}
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	tags := map[string]string{"server": c.server, "mode": s.Mode}

	c.writer.WritePoint(write.NewPoint("tick_cycle", tags, map[string]interface{}{
		"cycle":         s.Cycle,
		"rebuilt":       s.Rebuilt,
		"objects":       s.Objects,
		"eligible":      s.Eligible,
		"ticked":        s.Ticked,
		"skipped":       s.Skipped,
		"rebuilds":      s.Rebuilds,
		"invalidations": s.Invalidations,
		"failures":      s.Failures,
		"rebuild_us":    s.RebuildTime.Microseconds(),
	}, at))
	n := uint64(1)

	for reason, count := range s.ByReason {
		c.writer.WritePoint(write.NewPoint("tick_reason",
			map[string]string{"server": c.server, "reason": reason},
			map[string]interface{}{"objects": count},
			at))
		n++
	}

	c.mu.Lock()
	c.written += n
	c.mu.Unlock()
}

// Written returns the number of points queued so far.
func (c *Client) Written() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Failed returns the number of asynchronous write errors seen.
func (c *Client) Failed() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// Close flushes pending points and shuts the client down.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.writer.Flush()
	if c.client != nil {
		c.client.Close()
	}
}
