package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartmeter/backend/services/telemetry-service/internal/models"
	"smartmeter/backend/services/telemetry-service/internal/mqtt"
)

// Ingestion errors. All are message-scoped: the offending payload is dropped
// and logged, nothing is written, and the consumer loop keeps running.
var (
	ErrMalformedPayload = errors.New("ingest: malformed payload")
	ErrInvalidTimestamp = errors.New("ingest: invalid timestamp")
)

// MissingFieldError reports a required telemetry field absent from the payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("ingest: missing required field %q", e.Field)
}

// ReadingStore appends readings to the per-device timeline.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.Reading) error
}

// DeviceStore updates device liveness.
type DeviceStore interface {
	RegisterOrTouch(ctx context.Context, deviceID string, seenAt time.Time) error
}

// LiveCache holds the most recent sample per device.
type LiveCache interface {
	Save(ctx context.Context, reading models.Reading) error
}

// IngestService validates and normalizes inbound telemetry and appends it to
// the reading timeline. It holds no state between messages.
type IngestService struct {
	readings ReadingStore
	devices  DeviceStore
	live     LiveCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewIngestService returns service instance. live may be nil when no cache is configured.
func NewIngestService(readings ReadingStore, devices DeviceStore, live LiveCache, logger *zap.Logger) *IngestService {
	return &IngestService{
		readings: readings,
		devices:  devices,
		live:     live,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// telemetryPayload mirrors the meter firmware JSON. Pointer fields distinguish
// absent from zero-valued measurements.
type telemetryPayload struct {
	DeviceID    *string         `json:"device_id"`
	Timestamp   json.RawMessage `json:"timestamp"`
	Voltage     *float64        `json:"voltage"`
	Current     *float64        `json:"current"`
	PowerW      *float64        `json:"power_w"`
	EnergyKWh   *float64        `json:"energy_kwh"`
	PowerFactor *float64        `json:"power_factor"`
	PF          *float64        `json:"pf"`
	RSSI        *int            `json:"rssi"`
}

// Ingest handles one raw bus message: decode, validate required fields,
// normalize the timestamp, append the reading and touch the device registry.
// Field-level plausibility (negative voltage and the like) is deliberately not
// checked here; dropping a sample loses it from the time series permanently.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) error {
	var payload telemetryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.DeviceID == nil || strings.TrimSpace(*payload.DeviceID) == "" {
		return &MissingFieldError{Field: "device_id"}
	}
	if len(payload.Timestamp) == 0 {
		return &MissingFieldError{Field: "timestamp"}
	}
	if payload.Voltage == nil {
		return &MissingFieldError{Field: "voltage"}
	}
	if payload.Current == nil {
		return &MissingFieldError{Field: "current"}
	}
	if payload.PowerW == nil {
		return &MissingFieldError{Field: "power_w"}
	}
	if payload.EnergyKWh == nil {
		return &MissingFieldError{Field: "energy_kwh"}
	}

	ts, err := parseTimestamp(payload.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	receivedAt := s.now()

	powerFactor := 0.0
	if payload.PowerFactor != nil {
		powerFactor = *payload.PowerFactor
	} else if payload.PF != nil {
		powerFactor = *payload.PF
	}

	reading := models.Reading{
		DeviceID:    *payload.DeviceID,
		Timestamp:   ts,
		Voltage:     *payload.Voltage,
		Current:     *payload.Current,
		PowerW:      *payload.PowerW,
		PowerFactor: powerFactor,
		EnergyKWh:   *payload.EnergyKWh,
		RSSI:        payload.RSSI,
		CreatedAt:   receivedAt,
	}

	if err := s.readings.Insert(ctx, &reading); err != nil {
		return fmt.Errorf("ingest: store reading: %w", err)
	}

	if err := s.devices.RegisterOrTouch(ctx, reading.DeviceID, receivedAt); err != nil {
		return fmt.Errorf("ingest: touch device: %w", err)
	}

	if s.live != nil {
		if err := s.live.Save(ctx, reading); err != nil {
			s.logger.Warn("failed to cache live sample", zap.String("device_id", reading.DeviceID), zap.Error(err))
		}
	}

	s.logger.Debug("telemetry stored",
		zap.String("device_id", reading.DeviceID),
		zap.Time("ts", reading.Timestamp),
		zap.Float64("energy_kwh", reading.EnergyKWh),
	)
	return nil
}

// Run drains the delivery channel until ctx is cancelled. Every message is
// handled independently; ingest failures never stop the loop.
func (s *IngestService) Run(ctx context.Context, messages <-chan mqtt.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := s.Ingest(ctx, msg.Payload); err != nil {
				s.logIngestError(msg.Topic, err)
			}
		}
	}
}

func (s *IngestService) logIngestError(topic string, err error) {
	var missing *MissingFieldError
	switch {
	case errors.Is(err, ErrMalformedPayload), errors.Is(err, ErrInvalidTimestamp), errors.As(err, &missing):
		s.logger.Warn("telemetry message dropped", zap.String("topic", topic), zap.Error(err))
	default:
		s.logger.Error("failed to ingest telemetry", zap.String("topic", topic), zap.Error(err))
	}
}

// epochMillisThreshold separates unix seconds from milliseconds.
const epochMillisThreshold = 1e12

// parseTimestamp accepts RFC3339 (Z treated as UTC), a bare ISO-8601 instant
// assumed UTC, or a numeric unix epoch in seconds or milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if strings.HasPrefix(text, `"`) {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return time.Time{}, err
		}
		layouts := []string{
			time.RFC3339Nano,
			"2006-01-02T15:04:05.999999999",
			"2006-01-02 15:04:05",
		}
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, value); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
	}

	epoch, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", text)
	}
	if epoch >= epochMillisThreshold {
		return time.UnixMilli(int64(epoch)).UTC(), nil
	}
	return time.Unix(int64(epoch), 0).UTC(), nil
}
