package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postwatch/postwatch-core/internal/device"
	"github.com/postwatch/postwatch-core/internal/infrastructure/mqtt"
)

// writeTimeout bounds each repository write triggered by a broker message.
const writeTimeout = 5 * time.Second

// Subscriber is the subset of the MQTT client the bridge needs.
// This allows mocking in tests and flexibility in implementation.
type Subscriber interface {
	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// TelemetryWriter forwards accepted reports to time-series storage.
// This interface is satisfied by *influxdb.Client.
// It is optional - if nil, the bridge operates without telemetry.
type TelemetryWriter interface {
	// WriteDeviceHealth records a health report as a telemetry point.
	WriteDeviceHealth(mac string, wifiStrength *float64, uptimeSeconds *int64)

	// WriteMotionEvent records a motion detection as a telemetry point.
	WriteMotionEvent(mac string, detected bool, occurredAt time.Time)
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Bridge routes broker messages into the device registry.
// It handles:
//   - Motion detections published by mailbox sensors
//   - Periodic device health reports
//   - Best-effort telemetry forwarding to InfluxDB
//
// Thread Safety: All methods are safe for concurrent use. Handlers run on
// the MQTT client's goroutines and may execute concurrently.
type Bridge struct {
	subscriber Subscriber
	repo       device.Repository
	telemetry  TelemetryWriter // May be nil (optional)
	qos        byte

	// now is time.Now unless overridden in tests.
	now func() time.Time

	// Shutdown coordination
	ctx       context.Context
	ctxCancel context.CancelFunc
	stopOnce  sync.Once

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// Subscriber is the MQTT client the bridge subscribes through.
	Subscriber Subscriber

	// Repository is the device persistence layer.
	Repository device.Repository

	// Telemetry is optional time-series storage for accepted reports.
	// If nil, the bridge operates without telemetry.
	Telemetry TelemetryWriter

	// Logger is optional structured logger.
	Logger Logger

	// QoS is the subscription QoS level (0, 1, or 2).
	QoS byte
}

// NewBridge creates a new ingestion bridge.
// Call Start() to begin consuming messages.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Subscriber == nil {
		return nil, fmt.Errorf("subscriber is required")
	}
	if opts.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	return &Bridge{
		subscriber: opts.Subscriber,
		repo:       opts.Repository,
		telemetry:  opts.Telemetry,
		qos:        opts.QoS,
		now:        time.Now,
		ctx:        ctx,
		ctxCancel:  ctxCancel,
		logger:     opts.Logger,
	}, nil
}

// Start subscribes to the motion and health report topics.
func (b *Bridge) Start() error {
	motionTopic := mqtt.Topics{}.AllMotion()
	if err := b.subscriber.Subscribe(motionTopic, b.qos, b.handleMotion); err != nil {
		return fmt.Errorf("subscribe to motion reports: %w", err)
	}
	b.logInfo("subscribed to motion reports", "topic", motionTopic)

	sysinfoTopic := mqtt.Topics{}.AllSystemInfo()
	if err := b.subscriber.Subscribe(sysinfoTopic, b.qos, b.handleSystemInfo); err != nil {
		return fmt.Errorf("subscribe to health reports: %w", err)
	}
	b.logInfo("subscribed to health reports", "topic", sysinfoTopic)

	return nil
}

// Stop aborts in-flight repository writes.
// Subscriptions are released when the MQTT client disconnects.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.logInfo("ingestion bridge stopped")
	})
}

// handleMotion persists a motion detection received from the broker.
//
// The timestamp is assigned on receipt; whatever clock the sensor has is
// ignored. Messages for unregistered MACs are dropped with a warning.
func (b *Bridge) handleMotion(topic string, payload []byte) error {
	mac, err := b.macFrom(topic)
	if err != nil {
		return err
	}

	var msg motionMessage
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	detected := true
	if msg.Status != nil {
		detected = *msg.Status
	}

	now := b.now().UTC()
	event := &device.MotionEvent{
		ID:         "evt-" + uuid.NewString()[:16],
		DeviceMAC:  mac,
		Detected:   detected,
		OccurredAt: now,
		CreatedAt:  now,
	}

	ctx, cancel := context.WithTimeout(b.ctx, writeTimeout)
	defer cancel()

	if err := b.repo.InsertMotionEvent(ctx, event); err != nil {
		b.logWarn("dropping motion report", "mac", mac, "error", err)
		return fmt.Errorf("inserting motion event: %w", err)
	}

	if b.telemetry != nil {
		b.telemetry.WriteMotionEvent(mac, detected, now)
	}

	b.logDebug("motion recorded", "mac", mac, "detected", detected)
	return nil
}

// handleSystemInfo persists a device health report received from the broker.
func (b *Bridge) handleSystemInfo(topic string, payload []byte) error {
	mac, err := b.macFrom(topic)
	if err != nil {
		return err
	}

	var msg systemInfoMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	info := &device.SystemInfo{
		MAC:             mac,
		PublicIP:        msg.PublicIP,
		WifiStrength:    msg.WifiStrength,
		SerialNumber:    msg.SerialNumber,
		UptimeSeconds:   msg.UptimeSeconds,
		FirmwareVersion: msg.FirmwareVersion,
		LastSeen:        b.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(b.ctx, writeTimeout)
	defer cancel()

	if err := b.repo.UpsertSystemInfo(ctx, info); err != nil {
		b.logWarn("dropping health report", "mac", mac, "error", err)
		return fmt.Errorf("upserting system info: %w", err)
	}

	if b.telemetry != nil {
		b.telemetry.WriteDeviceHealth(mac, msg.WifiStrength, msg.UptimeSeconds)
	}

	b.logDebug("health report recorded", "mac", mac)
	return nil
}

// macFrom extracts and normalises the device MAC from a message topic.
func (b *Bridge) macFrom(topic string) (string, error) {
	raw := mqtt.MACFromTopic(topic)
	if raw == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}

	mac, err := device.NormalizeMAC(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidTopic, topic, err)
	}
	return mac, nil
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning message if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
