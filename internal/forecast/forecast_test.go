package forecast

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ApexYash11/TradeguardAI/internal/db"
)

func TestSimulateShape(t *testing.T) {
	start := time.Date(2026, 12, 20, 23, 59, 0, 0, time.UTC)

	for seed := uint64(0); seed < 50; seed++ {
		points := Simulate(rand.New(rand.NewPCG(seed, seed+1)), start, Days)
		require.Len(t, points, Days)
		assert.Equal(t, "2026-12-20", points[0].Date)

		for i, p := range points {
			assert.GreaterOrEqual(t, p.Risk, MinRisk)
			assert.LessOrEqual(t, p.Risk, MaxRisk)
			assert.GreaterOrEqual(t, p.LowerBound, MinRisk)
			assert.LessOrEqual(t, p.UpperBound, MaxRisk)
			assert.LessOrEqual(t, p.LowerBound, p.Risk)
			assert.GreaterOrEqual(t, p.UpperBound, p.Risk)
			assert.Equal(t, round3(p.Risk), p.Risk)

			if i > 0 {
				prev, err := time.Parse(dateLayout, points[i-1].Date)
				require.NoError(t, err)
				cur, err := time.Parse(dateLayout, p.Date)
				require.NoError(t, err)
				assert.Equal(t, 24*time.Hour, cur.Sub(prev), "dates advance one day at a time")
			}
		}
	}
}

func TestSimulateDeterministicForSeed(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Simulate(rand.New(rand.NewPCG(7, 7)), start, Days)
	b := Simulate(rand.New(rand.NewPCG(7, 7)), start, Days)
	assert.Equal(t, a, b)
}

func TestSimulatorStartsToday(t *testing.T) {
	s := NewSimulator(rand.New(rand.NewPCG(3, 4)))
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	first := s.Next()
	second := s.Next()
	require.Len(t, first, Days)
	assert.Equal(t, "2026-05-01", first[0].Date)
	assert.Equal(t, "2026-05-30", first[Days-1].Date)
	assert.NotEqual(t, first, second, "each call draws a fresh series")
}

func TestForSKURecords(t *testing.T) {
	s := NewSimulator(rand.New(rand.NewPCG(9, 9)))
	f := s.ForSKU(db.SKU{ID: 3, Name: "Lithium Cells"})
	assert.Equal(t, int64(3), f.SKUID)
	assert.Equal(t, "Lithium Cells", f.SKUName)
	assert.True(t, f.Simulated)
	require.Len(t, f.Data, Days)

	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	recs := f.Records(created)
	require.Len(t, recs, Days)
	for i, r := range recs {
		assert.Equal(t, int64(3), r.SKUID)
		assert.Equal(t, f.Data[i].Date, r.ForecastDate)
		assert.Equal(t, f.Data[i].Risk, r.Risk)
		require.NotNil(t, r.UpperBound)
		assert.Equal(t, f.Data[i].UpperBound, *r.UpperBound)
		assert.Equal(t, "2026-05-01T08:00:00.000000Z", r.CreatedAt)
	}
}
