package rf433

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// defaultHealthInterval is the reporting cadence when none is configured.
const defaultHealthInterval = 30 * time.Second

// HealthPublisher is the slice of the MQTT client the reporter needs.
type HealthPublisher interface {
	// Publish sends a message to a topic with the given QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected reports whether the broker link is up.
	IsConnected() bool
}

// HealthReporterConfig configures a HealthReporter.
type HealthReporterConfig struct {
	// BridgeID names the bridge in health messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Topic is where health messages are published, retained.
	Topic string

	// Interval between reports. Zero selects the default.
	Interval time.Duration

	// Publisher delivers the messages. Nil disables publishing.
	Publisher HealthPublisher

	// Logger receives publish failures. Optional.
	Logger Logger
}

// HealthReporter publishes a retained bridge status message on a fixed
// cadence. The bridge feeds it cumulative decode counters; consumers
// watch the counters to spot interference without subscribing to the
// raw event stream.
type HealthReporter struct {
	cfg     HealthReporterConfig
	started time.Time

	mu       sync.RWMutex
	counters HealthCounters

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewHealthReporter creates a reporter. Call Start to begin the cadence.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	if cfg.Interval == 0 {
		cfg.Interval = defaultHealthInterval
	}
	return &HealthReporter{
		cfg:     cfg,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Start launches the reporting loop.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.loop(ctx)
}

// Stop ends reporting and publishes a final "stopping" status.
// Safe to call more than once.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		//nolint:errcheck // Best-effort during shutdown
		h.publish(HealthStopping, "")
	})
}

// SetCounters replaces the cumulative decode counters included in the
// next report.
func (h *HealthReporter) SetCounters(counters HealthCounters) {
	h.mu.Lock()
	h.counters = counters
	h.mu.Unlock()
}

// PublishStarting announces the bridge before its first report.
func (h *HealthReporter) PublishStarting() error {
	return h.publish(HealthStarting, "bridge starting")
}

// PublishNow reports the current status immediately, outside the
// regular cadence.
func (h *HealthReporter) PublishNow() error {
	if h.cfg.Publisher == nil || !h.cfg.Publisher.IsConnected() {
		return h.publish(HealthDegraded, "MQTT disconnected")
	}
	return h.publish(HealthHealthy, "")
}

func (h *HealthReporter) loop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	if err := h.PublishNow(); err != nil {
		h.warn("initial health publish failed", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.warn("health publish failed", err)
			}
		}
	}
}

func (h *HealthReporter) publish(status HealthStatus, reason string) error {
	if h.cfg.Publisher == nil {
		return nil
	}

	h.mu.RLock()
	counters := h.counters
	h.mu.RUnlock()

	msg := NewHealthMessage(h.cfg.BridgeID, h.cfg.Version, status, counters, h.started)
	msg.Reason = reason

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Retained at QoS 1 so late subscribers see the last known state.
	return h.cfg.Publisher.Publish(h.cfg.Topic, payload, 1, true)
}

func (h *HealthReporter) warn(msg string, err error) {
	if h.cfg.Logger != nil {
		h.cfg.Logger.Error(msg, "error", err)
	}
}
