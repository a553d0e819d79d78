package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartmeter/backend/services/telemetry-service/internal/models"
)

type fakeReadingStore struct {
	readings []models.Reading
	err      error
}

func (f *fakeReadingStore) Insert(_ context.Context, reading *models.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.readings = append(f.readings, *reading)
	return nil
}

type fakeDeviceStore struct {
	touched map[string]time.Time
	err     error
}

func (f *fakeDeviceStore) RegisterOrTouch(_ context.Context, deviceID string, seenAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.touched == nil {
		f.touched = make(map[string]time.Time)
	}
	f.touched[deviceID] = seenAt
	return nil
}

type fakeLiveCache struct {
	saved []models.Reading
	err   error
}

func (f *fakeLiveCache) Save(_ context.Context, reading models.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, reading)
	return nil
}

func newTestIngest(readings *fakeReadingStore, devices *fakeDeviceStore, live *fakeLiveCache) *IngestService {
	var cache LiveCache
	if live != nil {
		cache = live
	}
	svc := NewIngestService(readings, devices, cache, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.August, 10, 8, 30, 0, 0, time.UTC) }
	return svc
}

const validPayload = `{
	"device_id": "meter-1",
	"timestamp": "2026-08-10T08:29:55Z",
	"voltage": 231.2,
	"current": 4.1,
	"power_w": 948.7,
	"energy_kwh": 1204.33,
	"power_factor": 0.97,
	"rssi": -61
}`

func TestIngestValidPayload(t *testing.T) {
	readings := &fakeReadingStore{}
	devices := &fakeDeviceStore{}
	live := &fakeLiveCache{}
	svc := newTestIngest(readings, devices, live)

	require.NoError(t, svc.Ingest(context.Background(), []byte(validPayload)))

	require.Len(t, readings.readings, 1)
	reading := readings.readings[0]
	assert.Equal(t, "meter-1", reading.DeviceID)
	assert.Equal(t, time.Date(2026, time.August, 10, 8, 29, 55, 0, time.UTC), reading.Timestamp)
	assert.Equal(t, 231.2, reading.Voltage)
	assert.Equal(t, 1204.33, reading.EnergyKWh)
	assert.Equal(t, 0.97, reading.PowerFactor)
	require.NotNil(t, reading.RSSI)
	assert.Equal(t, -61, *reading.RSSI)
	assert.Equal(t, svc.now(), reading.CreatedAt)

	assert.Equal(t, svc.now(), devices.touched["meter-1"])
	require.Len(t, live.saved, 1)
}

func TestIngestMalformedPayload(t *testing.T) {
	readings := &fakeReadingStore{}
	devices := &fakeDeviceStore{}
	svc := newTestIngest(readings, devices, nil)

	err := svc.Ingest(context.Background(), []byte(`{"device_id": `))
	require.ErrorIs(t, err, ErrMalformedPayload)
	assert.Empty(t, readings.readings)
	assert.Empty(t, devices.touched)
}

func TestIngestMissingFields(t *testing.T) {
	cases := map[string]string{
		"device_id":  `{"timestamp":"2026-08-10T08:00:00Z","voltage":230,"current":1,"power_w":230,"energy_kwh":5}`,
		"timestamp":  `{"device_id":"m","voltage":230,"current":1,"power_w":230,"energy_kwh":5}`,
		"voltage":    `{"device_id":"m","timestamp":"2026-08-10T08:00:00Z","current":1,"power_w":230,"energy_kwh":5}`,
		"current":    `{"device_id":"m","timestamp":"2026-08-10T08:00:00Z","voltage":230,"power_w":230,"energy_kwh":5}`,
		"power_w":    `{"device_id":"m","timestamp":"2026-08-10T08:00:00Z","voltage":230,"current":1,"energy_kwh":5}`,
		"energy_kwh": `{"device_id":"m","timestamp":"2026-08-10T08:00:00Z","voltage":230,"current":1,"power_w":230}`,
	}
	for field, payload := range cases {
		readings := &fakeReadingStore{}
		devices := &fakeDeviceStore{}
		svc := newTestIngest(readings, devices, nil)

		err := svc.Ingest(context.Background(), []byte(payload))
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing, field)
		assert.Equal(t, field, missing.Field)
		assert.Empty(t, readings.readings, field)
		assert.Empty(t, devices.touched, field)
	}
}

func TestIngestTimestampForms(t *testing.T) {
	cases := map[string]time.Time{
		`"2026-08-10T08:29:55Z"`:      time.Date(2026, time.August, 10, 8, 29, 55, 0, time.UTC),
		`"2026-08-10T10:29:55+02:00"`: time.Date(2026, time.August, 10, 8, 29, 55, 0, time.UTC),
		`"2026-08-10T08:29:55"`:       time.Date(2026, time.August, 10, 8, 29, 55, 0, time.UTC),
		`"2026-08-10 08:29:55"`:       time.Date(2026, time.August, 10, 8, 29, 55, 0, time.UTC),
		`1786695600`:                  time.Unix(1786695600, 0).UTC(),
		`1786695600000`:               time.UnixMilli(1786695600000).UTC(),
	}
	for raw, want := range cases {
		readings := &fakeReadingStore{}
		svc := newTestIngest(readings, &fakeDeviceStore{}, nil)

		payload := `{"device_id":"m","timestamp":` + raw + `,"voltage":230,"current":1,"power_w":230,"energy_kwh":5}`
		require.NoError(t, svc.Ingest(context.Background(), []byte(payload)), raw)
		require.Len(t, readings.readings, 1, raw)
		assert.Equal(t, want, readings.readings[0].Timestamp, raw)
	}
}

func TestIngestInvalidTimestamp(t *testing.T) {
	readings := &fakeReadingStore{}
	svc := newTestIngest(readings, &fakeDeviceStore{}, nil)

	payload := `{"device_id":"m","timestamp":"not a time","voltage":230,"current":1,"power_w":230,"energy_kwh":5}`
	err := svc.Ingest(context.Background(), []byte(payload))
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Empty(t, readings.readings)
}

func TestIngestPowerFactorAlias(t *testing.T) {
	readings := &fakeReadingStore{}
	svc := newTestIngest(readings, &fakeDeviceStore{}, nil)

	payload := `{"device_id":"m","timestamp":"2026-08-10T08:00:00Z","voltage":230,"current":1,"power_w":230,"energy_kwh":5,"pf":0.89}`
	require.NoError(t, svc.Ingest(context.Background(), []byte(payload)))
	require.Len(t, readings.readings, 1)
	assert.Equal(t, 0.89, readings.readings[0].PowerFactor)
}

func TestIngestOutOfOrderAccepted(t *testing.T) {
	readings := &fakeReadingStore{}
	devices := &fakeDeviceStore{}
	svc := newTestIngest(readings, devices, nil)

	later := `{"device_id":"m","timestamp":"2026-08-10T09:00:00Z","voltage":230,"current":1,"power_w":230,"energy_kwh":10}`
	earlier := `{"device_id":"m","timestamp":"2026-08-10T07:00:00Z","voltage":230,"current":1,"power_w":230,"energy_kwh":5}`
	require.NoError(t, svc.Ingest(context.Background(), []byte(later)))
	require.NoError(t, svc.Ingest(context.Background(), []byte(earlier)))

	// Both are stored as delivered; chronological order is a query concern.
	require.Len(t, readings.readings, 2)
	assert.True(t, readings.readings[0].Timestamp.After(readings.readings[1].Timestamp))
}

func TestIngestDuplicateTimestampsAccepted(t *testing.T) {
	readings := &fakeReadingStore{}
	svc := newTestIngest(readings, &fakeDeviceStore{}, nil)

	payload := `{"device_id":"m","timestamp":"2026-08-10T09:00:00Z","voltage":230,"current":1,"power_w":230,"energy_kwh":10}`
	require.NoError(t, svc.Ingest(context.Background(), []byte(payload)))
	require.NoError(t, svc.Ingest(context.Background(), []byte(payload)))
	require.Len(t, readings.readings, 2)
}

func TestIngestStorageErrorPropagates(t *testing.T) {
	readings := &fakeReadingStore{err: errors.New("connection refused")}
	devices := &fakeDeviceStore{}
	svc := newTestIngest(readings, devices, nil)

	err := svc.Ingest(context.Background(), []byte(validPayload))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMalformedPayload)
	assert.Empty(t, devices.touched)
}

func TestIngestLiveCacheFailureIsNonFatal(t *testing.T) {
	readings := &fakeReadingStore{}
	devices := &fakeDeviceStore{}
	live := &fakeLiveCache{err: errors.New("redis down")}
	svc := newTestIngest(readings, devices, live)

	require.NoError(t, svc.Ingest(context.Background(), []byte(validPayload)))
	require.Len(t, readings.readings, 1)
}
