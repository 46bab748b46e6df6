package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func samples(sevs ...float64) []Sample {
	out := make([]Sample, len(sevs))
	for i, s := range sevs {
		out[i] = Sample{Severity: s, Port: "P"}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeGTRIEmpty(t *testing.T) {
	g := ComputeGTRI(nil, now)
	assert.Equal(t, 0.0, g.GTRI)
	assert.Equal(t, TrendStable, g.Trend)
	assert.Zero(t, g.CriticalCount)
	assert.Zero(t, g.AffectedPorts)
	assert.Equal(t, db.FormatTime(now), g.Timestamp)
}

func TestComputeGTRIMeanAndCounts(t *testing.T) {
	in := []Sample{
		{0.81, "Shanghai"}, {0.68, "Panama City"}, {0.45, "Rotterdam"},
		{0.72, "Suez"}, {0.70, "Shanghai"},
	}
	g := ComputeGTRI(in, now)
	assert.Equal(t, 0.67, g.GTRI)
	assert.Equal(t, 2, g.CriticalCount, "0.70 is not critical")
	assert.Equal(t, 4, g.AffectedPorts)
	assert.Equal(t, TrendStable, g.Trend, "ten or fewer events have no older window")
}

func TestComputeGTRIClampsToOne(t *testing.T) {
	g := ComputeGTRI(samples(1.4, 1.2), now)
	assert.Equal(t, 1.0, g.GTRI)
}

func TestComputeGTRIWindowCap(t *testing.T) {
	sevs := append(repeat(0.2, WindowSize), repeat(0.9, 50)...)
	g := ComputeGTRI(samples(sevs...), now)
	assert.Equal(t, 0.2, g.GTRI)
	assert.Zero(t, g.CriticalCount)
}

func TestComputeGTRITrend(t *testing.T) {
	tests := []struct {
		name string
		sevs []float64
		want string
	}{
		{"rising", append(repeat(0.8, 10), repeat(0.4, 20)...), TrendRising},
		{"falling", append(repeat(0.3, 10), repeat(0.6, 20)...), TrendFalling},
		{"stable", repeat(0.5, 30), TrendStable},
		{"partial older window", append(repeat(0.8, 10), 0.1), TrendRising},
		{"items past 30 ignored", append(append(repeat(0.5, 10), repeat(0.5, 20)...), repeat(0.99, 40)...), TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeGTRI(samples(tt.sevs...), now).Trend)
		})
	}
}

func TestDailyTrend(t *testing.T) {
	points := []Point{
		{"2026-03-02T10:00:00.000000Z", 0.4},
		{"2026-03-01T10:00:00.000000Z", 0.81},
		{"2026-03-02T18:00:00.000000Z", 0.5},
		{"2026-03-01T11:00:00.000000Z", 0.33},
	}
	got := DailyTrend(points)
	assert.Equal(t, []DailyRisk{
		{Date: "2026-03-01", AvgRisk: 0.57},
		{Date: "2026-03-02", AvgRisk: 0.45},
	}, got)

	assert.Empty(t, DailyTrend(nil))
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name  string
		in    []float64
		avg   float64
		trend string
	}{
		{"positive", []float64{0.7, 0.8}, 0.75, SentimentPositive},
		{"negative", []float64{0.2, 0.3}, 0.25, SentimentNegative},
		{"neutral", []float64{0.4, 0.6}, 0.5, SentimentNeutral},
		{"boundary 0.6 is neutral", []float64{0.6}, 0.6, SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sentiment(tt.in)
			assert.Equal(t, tt.avg, s.AvgSentiment)
			assert.Equal(t, len(tt.in), s.ArticlesCount)
			assert.Equal(t, tt.trend, s.Trend)
		})
	}

	empty := Sentiment(nil)
	assert.Equal(t, SentimentSummary{AvgSentiment: 0.5}, empty)
}
