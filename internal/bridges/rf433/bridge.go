package rf433

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/hunter-rf-core/internal/decoder"
	"github.com/nerrad567/hunter-rf-core/internal/history"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hunter-rf-core/internal/pulse"
)

// BridgeID identifies this bridge in health topics and messages.
const BridgeID = "rf433"

// insertTimeout bounds history writes so a slow disk cannot stall the
// MQTT handler goroutine.
const insertTimeout = 5 * time.Second

// Bridge connects the pulse stream to the decoder and fans decoded
// events out to MQTT, the history repository and InfluxDB.
//
// Thread Safety: All methods are safe for concurrent use. Pulse
// messages are handled on the MQTT client's goroutines; each capture
// is decoded independently.
type Bridge struct {
	cfg    BridgeConfig
	mqtt   MQTTClient
	slicer *pulse.Slicer
	dec    *decoder.Decoder
	repo   history.Repository // Optional event persistence
	sink   MetricsWriter      // Optional time-series output
	health *HealthReporter

	// Cumulative decode counters since start
	counters   HealthCounters
	countersMu sync.Mutex

	// Shutdown coordination
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Optional, fixed at construction
	logger Logger
}

// MQTTClient is the interface for MQTT operations.
// Satisfied by *mqtt.Client; allows mocking in tests.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// MetricsWriter receives decoded events and decode statistics for
// time-series storage. Satisfied by *influxdb.Client.
// Optional - if nil, the bridge operates without metrics output.
type MetricsWriter interface {
	// WriteCommandEvent records one decoded remote command.
	WriteCommandEvent(remoteID, target, action string, command int)

	// WriteDecodeStats records per-capture decode counters.
	WriteDecodeStats(receiverID string, rows, decoded, noPreamble, shortMessage, badMessage int)
}

// Logger is the interface for structured logging.
// Compatible with logging.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// BridgeConfig holds bridge operating parameters.
type BridgeConfig struct {
	// ReceiverID identifies this receiver instance in events and metrics.
	ReceiverID string

	// QoS is the quality of service for event publishes.
	QoS byte

	// Version is the bridge software version for health messages.
	Version string

	// HealthInterval is the health reporting cadence.
	// Zero means the default (30 seconds).
	HealthInterval time.Duration
}

// BridgeOptions holds dependencies for creating a bridge.
type BridgeOptions struct {
	// Config holds bridge operating parameters.
	Config BridgeConfig

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Slicer converts pulse trains into bit matrices.
	Slicer *pulse.Slicer

	// Decoder decodes bit matrices into records.
	Decoder *decoder.Decoder

	// Repository is optional event persistence.
	// If nil, decoded events are not stored.
	Repository history.Repository

	// Metrics is optional time-series output.
	// If nil, the bridge operates without metrics.
	Metrics MetricsWriter

	// Logger is optional structured logging.
	Logger Logger
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Slicer == nil {
		return nil, fmt.Errorf("slicer is required")
	}
	if opts.Decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}

	// Bridge-level context, cancelled on Stop() to abort in-flight writes
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		cfg:       opts.Config,
		mqtt:      opts.MQTTClient,
		slicer:    opts.Slicer,
		dec:       opts.Decoder,
		repo:      opts.Repository, // May be nil (optional)
		sink:      opts.Metrics,    // May be nil (optional)
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  BridgeID,
		Version:   opts.Config.Version,
		Topic:     mqtt.Topics{}.BridgeHealth(BridgeID),
		Interval:  opts.Config.HealthInterval,
		Publisher: opts.MQTTClient,
		Logger:    opts.Logger,
	})

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the pulse topic and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	pulseTopic := mqtt.Topics{}.RadioPulses()
	if err := b.mqtt.Subscribe(pulseTopic, b.cfg.QoS, b.handlePulses); err != nil {
		return fmt.Errorf("subscribe to pulses: %w", err)
	}
	b.logInfo("subscribed to pulses", "topic", pulseTopic)

	b.health.Start(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish healthy status", err)
	}

	b.logInfo("bridge started",
		"receiver_id", b.cfg.ReceiverID,
		"revision", string(b.dec.Profile().Revision))

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		// Cancel bridge context to abort in-flight history writes
		b.ctxCancel()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		b.logInfo("bridge stopped")
	})
}

// Counters returns a snapshot of the cumulative decode counters.
func (b *Bridge) Counters() HealthCounters {
	b.countersMu.Lock()
	defer b.countersMu.Unlock()
	return b.counters
}

// handlePulses processes one pulse capture from the demodulator.
//
// The error return feeds the MQTT client's handler-error logging; the
// bridge never unsubscribes on bad input.
func (b *Bridge) handlePulses(_ string, payload []byte) error {
	var msg PulseMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if len(msg.Pulses) == 0 {
		return ErrEmptyTrain
	}

	matrix := b.slicer.Slice(msg.Pulses)
	records, stats := b.dec.Decode(matrix)

	b.updateCounters(stats)

	b.logDebug("capture decoded",
		"pulses", len(msg.Pulses),
		"rows", stats.Rows,
		"decoded", stats.Decoded)

	for _, rec := range records {
		b.emitRecord(rec)
	}

	if b.sink != nil {
		b.sink.WriteDecodeStats(b.cfg.ReceiverID,
			stats.Rows, stats.Decoded,
			stats.NoPreamble, stats.ShortMessage, stats.BadMessage)
	}

	return nil
}

// emitRecord publishes one decoded record and mirrors it to the
// optional sinks. Failures in one sink never block the others.
func (b *Bridge) emitRecord(rec decoder.Record) {
	event := NewEventMessage(b.cfg.ReceiverID, rec)

	payload, err := json.Marshal(event)
	if err != nil {
		b.logError("failed to marshal event", err)
		return
	}

	topic := mqtt.Topics{}.RemoteEvent(rec.RemoteID)
	if err := b.mqtt.Publish(topic, payload, b.cfg.QoS, false); err != nil {
		b.logError("failed to publish event", err)
	}

	if b.repo != nil {
		ctx, cancel := context.WithTimeout(b.ctx, insertTimeout)
		stored := history.FromRecord(rec)
		stored.ReceivedAt = event.Timestamp
		if err := b.repo.Insert(ctx, &stored); err != nil {
			b.logError("failed to store event", err)
		}
		cancel()
	}

	if b.sink != nil {
		b.sink.WriteCommandEvent(rec.RemoteID, string(rec.Target), rec.Action, rec.Command)
	}
}

// updateCounters folds one capture's statistics into the cumulative
// counters and refreshes the health reporter.
func (b *Bridge) updateCounters(stats decoder.Stats) {
	b.countersMu.Lock()
	b.counters.Captures++
	b.counters.Rows += uint64(stats.Rows)
	b.counters.Decoded += uint64(stats.Decoded)
	b.counters.NoPreamble += uint64(stats.NoPreamble)
	b.counters.ShortMessage += uint64(stats.ShortMessage)
	b.counters.BadMessage += uint64(stats.BadMessage)
	snapshot := b.counters
	b.countersMu.Unlock()

	b.health.SetCounters(snapshot)
}

// The logger is fixed at construction; helpers tolerate a nil one.

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if b.logger != nil {
		b.logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if b.logger != nil {
		b.logger.Error(msg, "error", err)
	}
}

func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, keysAndValues...)
	}
}
