package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/infra/logger"
)

// InfluxSink writes planning records to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// CyclePoint converts a cycle record into its line protocol point.
func CyclePoint(rec coremetrics.CycleRecord) *write.Point {
	return write.NewPointWithMeasurement("planning_cycle").
		AddTag("tenant_id", rec.TenantID).
		AddTag("failed", strconv.FormatBool(rec.Failed)).
		AddField("needs_processed", rec.NeedsProcessed).
		AddField("proposals_created", rec.ProposalsCreated).
		AddField("needs_skipped", rec.NeedsSkipped).
		AddField("needs_duplicate", rec.NeedsDuplicate).
		AddField("needs_failed", rec.NeedsFailed).
		AddField("fallback_scores", rec.FallbackScores).
		AddField("mean_top_score", round3(rec.MeanTopScore)).
		AddField("duration_ms", round3(rec.Duration().Seconds()*1000)).
		SetTime(rec.FinishedAt)
}

// ProposalPoint converts a proposal record into its line protocol point.
func ProposalPoint(rec coremetrics.ProposalRecord) *write.Point {
	return write.NewPointWithMeasurement("proposal_created").
		AddTag("tenant_id", rec.TenantID).
		AddTag("vessel_id", rec.VesselID).
		AddTag("fallback", strconv.FormatBool(rec.Fallback)).
		AddField("proposal_id", rec.ProposalID).
		AddField("score", rec.Score).
		SetTime(rec.Time)
}

// RecordCycle writes the cycle summary.
func (s *InfluxSink) RecordCycle(rec coremetrics.CycleRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, CyclePoint(rec))
}

// RecordProposal writes a proposal event.
func (s *InfluxSink) RecordProposal(rec coremetrics.ProposalRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, ProposalPoint(rec))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
