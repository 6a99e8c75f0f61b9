//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/adapter/kafka"
	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/config"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
	"github.com/couchcryptid/youth-population-analysis/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testForecastTopic = "test-forecasts"

const testCSV = `LOCATION,INDICATOR,SUBJECT,MEASURE,FREQUENCY,TIME,Value,Flag Codes
AUS,YOUNGPOP,TOT,PC_POP,A,2001,1,
AUS,YOUNGPOP,TOT,PC_POP,A,2002,3,
AUS,YOUNGPOP,TOT,PC_POP,A,2003,5,
BEL,YOUNGPOP,TOT,PC_POP,A,2001,17.6,
BEL,YOUNGPOP,TOT,PC_POP,A,2002,17.5,
JPN,YOUNGPOP,TOT,PC_POP,A,2015,12.6,
NZL,YOUNGPOP,TOT,PC_POP,A,2010,NA,
`

type publishedReport struct {
	Report  domain.LocationReport
	Key     string
	Headers map[string]string
}

func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedReport {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from forecast topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.LocationReport
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal report")

	return publishedReport{Report: report, Key: string(msg.Key), Headers: headers}
}

// TestForecastPipelineToKafka loads a CSV, runs the forecast pipeline with the
// Kafka writer as sink and reads every report back from the topic.
func TestForecastPipelineToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testForecastTopic)

	ds, err := dataset.LoadReader(strings.NewReader(testCSV), dataset.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Rejected())

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaForecastTopic: testForecastTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	transformer := pipeline.NewTransformer(analysis.NewEngine(), []int{2023, 2024}, clockwork.NewFakeClockAt(now))
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(pipeline.NewDatasetExtractor(ds), transformer, writer, discardLogger(), metrics, 50)

	sum, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Published)
	assert.Equal(t, 1, sum.Skipped)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testForecastTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := map[string]publishedReport{}
	for len(received) < sum.Published {
		pr := readReport(ctx, t, consumer)
		received[pr.Key] = pr
	}

	aus, ok := received["AUS"]
	require.True(t, ok, "expected AUS report")
	assert.Equal(t, "AUS", aus.Headers["location"])
	assert.Equal(t, now.Format(time.RFC3339), aus.Headers["generated_at"])
	assert.InDelta(t, 2, aus.Report.Trend.Slope, 1e-9)
	assert.Equal(t, []int{2023, 2024}, aus.Report.Forecast.QueryYears)
	require.Len(t, aus.Report.Forecast.Predicted, 2)
	assert.InDelta(t, 2*2023-4001, aus.Report.Forecast.Predicted[0], 1e-6)

	_, ok = received["BEL"]
	assert.True(t, ok, "expected BEL report")
	_, ok = received["JPN"]
	assert.False(t, ok, "JPN has one observation and must be skipped")
}
