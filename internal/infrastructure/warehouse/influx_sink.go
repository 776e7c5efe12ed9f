package warehouse

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

const measurement = "unit_readiness"

// historyRange bounds how far back History looks
const historyRange = "-30d"

// Config holds InfluxDB connection settings
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink records readiness reports as time-series points so the
// dashboard can chart a unit's readiness over time.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	bucket   string
}

// NewInfluxSink creates a sink backed by an InfluxDB bucket
func NewInfluxSink(config Config) *InfluxSink {
	client := influxdb2.NewClient(config.URL, config.Token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(config.Org, config.Bucket),
		queryAPI: client.QueryAPI(config.Org),
		bucket:   config.Bucket,
	}
}

// RecordReport writes one readiness data point
func (s *InfluxSink) RecordReport(ctx context.Context, report *domain.ReadinessReport) error {
	point := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("unit_id", report.UnitID).
		AddTag("unit_type", report.UnitType).
		AddField("readiness_score", report.ReadinessScore).
		AddField("staff_present", report.StaffPresent).
		AddField("staff_required", report.StaffRequired).
		AddField("is_understaffed", report.IsUnderstaffed).
		SetTime(report.Timestamp)

	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write readiness point: %w", err)
	}
	return nil
}

// History returns the most recent readiness samples for a unit, newest
// first
func (s *InfluxSink) History(ctx context.Context, unitID string, limit int) ([]domain.ReadinessSample, error) {
	query := fmt.Sprintf(`
		from(bucket: "%s")
		  |> range(start: %s)
		  |> filter(fn: (r) => r._measurement == "%s")
		  |> filter(fn: (r) => r.unit_id == "%s")
		  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
		  |> sort(columns: ["_time"], desc: true)
		  |> limit(n: %d)
	`, s.bucket, historyRange, measurement, unitID, limit)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query readiness history: %w", err)
	}

	samples := make([]domain.ReadinessSample, 0, limit)
	for result.Next() {
		record := result.Record()
		sample := domain.ReadinessSample{
			UnitID:    unitID,
			Timestamp: record.Time(),
		}
		if score, ok := record.ValueByKey("readiness_score").(int64); ok {
			sample.Score = int(score)
		}
		if present, ok := record.ValueByKey("staff_present").(int64); ok {
			sample.StaffPresent = int(present)
		}
		if understaffed, ok := record.ValueByKey("is_understaffed").(bool); ok {
			sample.Understaffed = understaffed
		}
		samples = append(samples, sample)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to read readiness history: %w", result.Err())
	}

	return samples, nil
}

// HealthCheck verifies connectivity to InfluxDB
func (s *InfluxSink) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := s.client.Health(timeoutCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influxdb unhealthy: %s", health.Status)
	}
	return nil
}

// Close releases the underlying client
func (s *InfluxSink) Close() {
	s.client.Close()
}
