package rf433

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hunter-rf-core/internal/decoder"
	"github.com/nerrad567/hunter-rf-core/internal/history"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hunter-rf-core/internal/pulse"
)

// =============================================================================
// Fakes
// =============================================================================

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// fakeMQTT captures publishes and subscriptions without a broker.
type fakeMQTT struct {
	mu        sync.Mutex
	published []publishedMessage
	handlers  map[string]mqtt.MessageHandler
	connected bool
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{
		handlers:  make(map[string]mqtt.MessageHandler),
		connected: true,
	}
}

func (f *fakeMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (f *fakeMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) IsConnected() bool { return f.connected }

// messagesOn returns all publishes to a given topic.
func (f *fakeMQTT) messagesOn(topic string) []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedMessage
	for _, m := range f.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// fakeRepo records inserted events in memory.
type fakeRepo struct {
	mu     sync.Mutex
	events []history.Event
}

func (f *fakeRepo) Insert(_ context.Context, event *history.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeRepo) CountByRemote(context.Context) (map[string]int, error) { return nil, nil }

func (f *fakeRepo) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type commandWrite struct {
	remoteID string
	target   string
	action   string
	command  int
}

type statsWrite struct {
	receiverID                                  string
	rows, decoded, noPreamble, shortMsg, badMsg int
}

// fakeMetrics records metric writes in memory.
type fakeMetrics struct {
	mu       sync.Mutex
	commands []commandWrite
	stats    []statsWrite
}

func (f *fakeMetrics) WriteCommandEvent(remoteID, target, action string, command int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, commandWrite{remoteID, target, action, command})
}

func (f *fakeMetrics) WriteDecodeStats(receiverID string, rows, decoded, noPreamble, shortMessage, badMessage int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = append(f.stats, statsWrite{receiverID, rows, decoded, noPreamble, shortMessage, badMessage})
}

// =============================================================================
// Frame construction helpers
// =============================================================================

// bits renders v as an n-bit binary string, MSB first.
func bits(v uint64, n int) string {
	s := ""
	for i := n - 1; i >= 0; i-- {
		if v>>uint(i)&1 == 1 {
			s += "1"
		} else {
			s += "0"
		}
	}
	return s
}

// frameB builds the bit string of a full frame in the later layout:
// all-ones preamble, guard bit, 40-bit id, padded 10-bit command and
// inverse, trailing pad.
func frameB(id uint64, cmd, inv int) string {
	return strings.Repeat("1", 12) +
		"0" + bits(id, 40) +
		"00" + bits(uint64(cmd), 10) +
		"00" + bits(uint64(inv), 10) + "0"
}

// trainFor converts a bit string into a mark/space pulse train using the
// Hunter timing profile: short mark for 1, long mark for 0.
func trainFor(bitString string) []int {
	var train []int
	for _, c := range bitString {
		if c == '1' {
			train = append(train, 412)
		} else {
			train = append(train, 812)
		}
		train = append(train, 500)
	}
	return train
}

func pulsePayload(t *testing.T, train []int) []byte {
	t.Helper()
	payload, err := json.Marshal(PulseMessage{Pulses: train})
	if err != nil {
		t.Fatalf("marshalling pulse message: %v", err)
	}
	return payload
}

// newTestBridge wires a bridge with fakes and starts it.
func newTestBridge(t *testing.T) (*Bridge, *fakeMQTT, *fakeRepo, *fakeMetrics) {
	t.Helper()

	client := newFakeMQTT()
	repo := &fakeRepo{}
	metrics := &fakeMetrics{}

	b, err := NewBridge(BridgeOptions{
		Config: BridgeConfig{
			ReceiverID:     "hunterrf-test",
			QoS:            1,
			HealthInterval: time.Hour, // Keep the ticker quiet during tests
		},
		MQTTClient: client,
		Slicer:     pulse.NewSlicer(pulse.HunterTiming()),
		Decoder:    decoder.New(decoder.ProfileB(), nil),
		Repository: repo,
		Metrics:    metrics,
	})
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(b.Stop)

	return b, client, repo, metrics
}

// =============================================================================
// Tests
// =============================================================================

func TestNewBridge_MissingDependencies(t *testing.T) {
	slicer := pulse.NewSlicer(pulse.HunterTiming())
	dec := decoder.New(decoder.ProfileB(), nil)

	tests := []struct {
		name string
		opts BridgeOptions
	}{
		{"no mqtt", BridgeOptions{Slicer: slicer, Decoder: dec}},
		{"no slicer", BridgeOptions{MQTTClient: newFakeMQTT(), Decoder: dec}},
		{"no decoder", BridgeOptions{MQTTClient: newFakeMQTT(), Slicer: slicer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBridge(tt.opts); err == nil {
				t.Error("NewBridge() should return error")
			}
		})
	}
}

func TestStart_SubscribesToPulses(t *testing.T) {
	_, client, _, _ := newTestBridge(t)

	client.mu.Lock()
	_, ok := client.handlers["hunterrf/radio/pulses"]
	client.mu.Unlock()
	if !ok {
		t.Error("bridge did not subscribe to hunterrf/radio/pulses")
	}
}

func TestHandlePulses_DecodesAndFansOut(t *testing.T) {
	b, client, repo, metrics := newTestBridge(t)

	// Fan "Speed 33%": command 4, exact 10-bit complement 0x3FB
	train := trainFor(frameB(0x0102030405, 4, 0x3FB))
	if err := b.handlePulses("hunterrf/radio/pulses", pulsePayload(t, train)); err != nil {
		t.Fatalf("handlePulses() error = %v", err)
	}

	// Event published to the per-remote topic
	events := client.messagesOn("hunterrf/event/remote/0102030405")
	if len(events) != 1 {
		t.Fatalf("got %d event publishes, want 1", len(events))
	}

	var event EventMessage
	if err := json.Unmarshal(events[0].payload, &event); err != nil {
		t.Fatalf("unmarshalling event: %v", err)
	}
	if event.ReceiverID != "hunterrf-test" {
		t.Errorf("ReceiverID = %q, want hunterrf-test", event.ReceiverID)
	}
	if event.RemoteID != "0102030405" || event.Command != 4 {
		t.Errorf("RemoteID/Command = %q/%d, want 0102030405/4", event.RemoteID, event.Command)
	}
	if event.Target != decoder.TargetFan || event.Action != "Speed 33%" {
		t.Errorf("Target/Action = %q/%q, want Fan/Speed 33%%", event.Target, event.Action)
	}

	// Event persisted
	repo.mu.Lock()
	stored := len(repo.events)
	repo.mu.Unlock()
	if stored != 1 {
		t.Errorf("%d events stored, want 1", stored)
	}

	// Metrics written
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.commands) != 1 {
		t.Fatalf("%d command writes, want 1", len(metrics.commands))
	}
	if metrics.commands[0].target != "Fan" || metrics.commands[0].command != 4 {
		t.Errorf("command write = %+v", metrics.commands[0])
	}
	if len(metrics.stats) != 1 {
		t.Fatalf("%d stats writes, want 1", len(metrics.stats))
	}
	if metrics.stats[0].decoded != 1 {
		t.Errorf("stats decoded = %d, want 1", metrics.stats[0].decoded)
	}
}

func TestHandlePulses_RepeatedFrames(t *testing.T) {
	b, client, _, _ := newTestBridge(t)

	// A burst: the same frame repeated twice, rows split by a reset gap.
	frame := frameB(0x0102030405, 138, 0x375) // Light "On"
	var train []int
	for i, c := range frame {
		if c == '1' {
			train = append(train, 412)
		} else {
			train = append(train, 812)
		}
		if i == len(frame)-1 {
			train = append(train, 13000) // reset gap ends the row
		} else {
			train = append(train, 500)
		}
	}
	train = append(train, trainFor(frame)...)

	if err := b.handlePulses("hunterrf/radio/pulses", pulsePayload(t, train)); err != nil {
		t.Fatalf("handlePulses() error = %v", err)
	}

	events := client.messagesOn("hunterrf/event/remote/0102030405")
	if len(events) != 2 {
		t.Fatalf("got %d event publishes, want 2 (one per repeat)", len(events))
	}

	counters := b.Counters()
	if counters.Captures != 1 {
		t.Errorf("Captures = %d, want 1", counters.Captures)
	}
	if counters.Decoded != 2 {
		t.Errorf("Decoded = %d, want 2", counters.Decoded)
	}
}

func TestHandlePulses_InvalidPayload(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	err := b.handlePulses("hunterrf/radio/pulses", []byte("not json"))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("handlePulses() error = %v, want ErrInvalidPayload", err)
	}
}

func TestHandlePulses_EmptyTrain(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	err := b.handlePulses("hunterrf/radio/pulses", []byte(`{"pulses":[]}`))
	if !errors.Is(err, ErrEmptyTrain) {
		t.Errorf("handlePulses() error = %v, want ErrEmptyTrain", err)
	}
}

func TestHandlePulses_NoiseOnlyCapture(t *testing.T) {
	b, client, repo, _ := newTestBridge(t)

	// Marks that classify but carry no preamble
	train := trainFor("010101010101010101")
	if err := b.handlePulses("hunterrf/radio/pulses", pulsePayload(t, train)); err != nil {
		t.Fatalf("handlePulses() error = %v", err)
	}

	for _, m := range client.messagesOn("hunterrf/event/remote/0102030405") {
		t.Errorf("unexpected event publish: %s", m.topic)
	}

	repo.mu.Lock()
	stored := len(repo.events)
	repo.mu.Unlock()
	if stored != 0 {
		t.Errorf("%d events stored from noise, want 0", stored)
	}

	counters := b.Counters()
	if counters.NoPreamble == 0 && counters.ShortMessage == 0 {
		t.Error("noise capture recorded no failure counters")
	}
}

func TestHealthReporter_PublishesRetainedStatus(t *testing.T) {
	client := newFakeMQTT()

	h := NewHealthReporter(HealthReporterConfig{
		BridgeID:  BridgeID,
		Version:   "1.0.0",
		Topic:     mqtt.Topics{}.BridgeHealth(BridgeID),
		Publisher: client,
	})
	h.SetCounters(HealthCounters{Captures: 3, Decoded: 2})

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}

	msgs := client.messagesOn("hunterrf/health/rf433")
	if len(msgs) != 1 {
		t.Fatalf("got %d health publishes, want 1", len(msgs))
	}
	if !msgs[0].retained {
		t.Error("health message should be retained")
	}

	var health HealthMessage
	if err := json.Unmarshal(msgs[0].payload, &health); err != nil {
		t.Fatalf("unmarshalling health: %v", err)
	}
	if health.Status != HealthHealthy {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.Counters.Captures != 3 || health.Counters.Decoded != 2 {
		t.Errorf("Counters = %+v", health.Counters)
	}
}

func TestHealthReporter_DegradedWhenDisconnected(t *testing.T) {
	client := newFakeMQTT()
	client.connected = false

	h := NewHealthReporter(HealthReporterConfig{
		BridgeID:  BridgeID,
		Topic:     mqtt.Topics{}.BridgeHealth(BridgeID),
		Publisher: client,
	})

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}

	msgs := client.messagesOn("hunterrf/health/rf433")
	if len(msgs) != 1 {
		t.Fatalf("got %d health publishes, want 1", len(msgs))
	}

	var health HealthMessage
	if err := json.Unmarshal(msgs[0].payload, &health); err != nil {
		t.Fatalf("unmarshalling health: %v", err)
	}
	if health.Status != HealthDegraded {
		t.Errorf("Status = %q, want degraded", health.Status)
	}
	if health.Reason == "" {
		t.Error("degraded status should carry a reason")
	}
}

func TestHealthReporter_StopPublishesStopping(t *testing.T) {
	client := newFakeMQTT()

	h := NewHealthReporter(HealthReporterConfig{
		BridgeID:  BridgeID,
		Topic:     mqtt.Topics{}.BridgeHealth(BridgeID),
		Publisher: client,
	})

	h.Stop()
	h.Stop() // Second call must not publish again

	msgs := client.messagesOn("hunterrf/health/rf433")
	if len(msgs) != 1 {
		t.Fatalf("got %d health publishes, want 1", len(msgs))
	}

	var health HealthMessage
	if err := json.Unmarshal(msgs[0].payload, &health); err != nil {
		t.Fatalf("unmarshalling health: %v", err)
	}
	if health.Status != HealthStopping {
		t.Errorf("Status = %q, want stopping", health.Status)
	}
}

func TestStop_Idempotent(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	b.Stop()
	b.Stop() // Second call must not panic
}
