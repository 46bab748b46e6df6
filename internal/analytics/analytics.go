// Package analytics computes the derived read-model figures: the Global Trade
// Risk Index, the daily severity trend and the news sentiment summary. All
// functions are pure; callers fetch the inputs from the store.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

// Window sizes used by GTRI. The store query is capped at WindowSize.
const (
	WindowSize     = 100
	recentSize     = 10
	olderEnd       = 30
	criticalCutoff = 0.7
)

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Sample is one event's contribution to the risk index.
type Sample struct {
	Severity float64
	Port     string
}

type GTRI struct {
	GTRI          float64 `json:"gtri"`
	Trend         string  `json:"trend"`
	CriticalCount int     `json:"critical_count"`
	AffectedPorts int     `json:"affected_ports"`
	Timestamp     string  `json:"timestamp"`
}

// ComputeGTRI summarizes samples ordered most recent first. Only the first
// WindowSize samples are considered. The trend compares the mean of the first
// ten samples against the mean of samples 11 through 30; with no older
// samples the trend is stable.
func ComputeGTRI(samples []Sample, now time.Time) GTRI {
	out := GTRI{Trend: TrendStable, Timestamp: db.FormatTime(now)}
	if len(samples) > WindowSize {
		samples = samples[:WindowSize]
	}
	if len(samples) == 0 {
		return out
	}

	ports := make(map[string]struct{})
	var total float64
	for _, s := range samples {
		total += s.Severity
		if s.Severity > criticalCutoff {
			out.CriticalCount++
		}
		ports[s.Port] = struct{}{}
	}
	out.GTRI = round(math.Min(total/float64(len(samples)), 1.0), 2)
	out.AffectedPorts = len(ports)

	recent := samples[:min(recentSize, len(samples))]
	var older []Sample
	if len(samples) > recentSize {
		older = samples[recentSize:min(olderEnd, len(samples))]
	}
	if len(older) > 0 {
		r, o := meanSeverity(recent), meanSeverity(older)
		switch {
		case r > o:
			out.Trend = TrendRising
		case r < o:
			out.Trend = TrendFalling
		}
	}
	return out
}

func meanSeverity(samples []Sample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.Severity
	}
	return sum / float64(len(samples))
}

// Point is a timestamped severity. Timestamp is an ISO-8601 string.
type Point struct {
	Timestamp string
	Severity  float64
}

type DailyRisk struct {
	Date    string  `json:"date"`
	AvgRisk float64 `json:"avg_risk"`
}

// DailyTrend groups points by the date part of their timestamp and averages
// each day's severity, ascending by date.
func DailyTrend(points []Point) []DailyRisk {
	type acc struct {
		sum float64
		n   int
	}
	days := make(map[string]*acc)
	for _, p := range points {
		date, _, _ := strings.Cut(p.Timestamp, "T")
		a, ok := days[date]
		if !ok {
			a = &acc{}
			days[date] = a
		}
		a.sum += p.Severity
		a.n++
	}

	out := make([]DailyRisk, 0, len(days))
	for date, a := range days {
		out = append(out, DailyRisk{Date: date, AvgRisk: round(a.sum/float64(a.n), 2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type SentimentSummary struct {
	AvgSentiment  float64 `json:"avg_sentiment"`
	ArticlesCount int     `json:"articles_count"`
	Trend         string  `json:"sentiment_trend,omitempty"`
}

// Sentiment averages article sentiments. With no values it reports a neutral
// 0.5 without a trend label.
func Sentiment(values []float64) SentimentSummary {
	if len(values) == 0 {
		return SentimentSummary{AvgSentiment: 0.5}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))

	trend := SentimentNeutral
	switch {
	case avg > 0.6:
		trend = SentimentPositive
	case avg < 0.4:
		trend = SentimentNegative
	}
	return SentimentSummary{
		AvgSentiment:  round(avg, 2),
		ArticlesCount: len(values),
		Trend:         trend,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
