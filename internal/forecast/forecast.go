// Package forecast generates simulated SKU risk series.
//
// The output is a stochastic placeholder for the dashboard, not a prediction:
// a random base level, a random linear drift and uniform noise, clamped to a
// fixed band. Two calls for the same SKU return different series.
package forecast

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

const (
	Days      = 30
	MinRisk   = 0.1
	MaxRisk   = 0.95
	noiseBand = 0.05
)

const dateLayout = "2006-01-02"

type Point struct {
	Date       string  `json:"date"`
	Risk       float64 `json:"risk"`
	UpperBound float64 `json:"upper_bound"`
	LowerBound float64 `json:"lower_bound"`
}

// Simulate returns days points starting at start's calendar date.
// base ~ U[0.3, 0.8], drift ~ U[-0.01, 0.02] per day and each day adds
// noise ~ U[-0.05, 0.05]; the result is clamped to [0.1, 0.95] and rounded
// to three decimals. Bounds are risk -/+ the noise band, clamped the same way.
func Simulate(r *rand.Rand, start time.Time, days int) []Point {
	base := uniform(r, 0.3, 0.8)
	drift := uniform(r, -0.01, 0.02)
	start = start.UTC()

	points := make([]Point, days)
	for i := range points {
		risk := round3(clamp(base+drift*float64(i)+uniform(r, -noiseBand, noiseBand), MinRisk, MaxRisk))
		points[i] = Point{
			Date:       start.AddDate(0, 0, i).Format(dateLayout),
			Risk:       risk,
			UpperBound: round3(clamp(risk+noiseBand, MinRisk, MaxRisk)),
			LowerBound: round3(clamp(risk-noiseBand, MinRisk, MaxRisk)),
		}
	}
	return points
}

// Simulator is a goroutine-safe Simulate with its own random source.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulator seeds from the runtime's random source when rng is nil.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{rng: rng, now: time.Now}
}

// Next simulates a Days-long series starting today.
func (s *Simulator) Next() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Simulate(s.rng, s.now(), Days)
}

// SKUForecast is a simulated series for one SKU. Simulated is always true.
type SKUForecast struct {
	SKUID     int64   `json:"sku_id"`
	SKUName   string  `json:"sku_name"`
	Data      []Point `json:"forecast_data"`
	Simulated bool    `json:"simulated"`
}

func (s *Simulator) ForSKU(sku db.SKU) SKUForecast {
	return SKUForecast{SKUID: sku.ID, SKUName: sku.Name, Data: s.Next(), Simulated: true}
}

// Records converts the series into forecast history rows stamped createdAt.
func (f SKUForecast) Records(createdAt time.Time) []db.ForecastRecord {
	stamp := db.FormatTime(createdAt)
	out := make([]db.ForecastRecord, len(f.Data))
	for i, p := range f.Data {
		upper, lower := p.UpperBound, p.LowerBound
		out[i] = db.ForecastRecord{
			SKUID:        f.SKUID,
			ForecastDate: p.Date,
			Risk:         p.Risk,
			UpperBound:   &upper,
			LowerBound:   &lower,
			CreatedAt:    stamp,
		}
	}
	return out
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
