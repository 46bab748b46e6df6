package db

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

type seedEvent struct {
	title     string
	summary   string
	severity  float64
	port      string
	commodity string
}

var seedEvents = []seedEvent{
	{"Shanghai Port Strike", "Dock workers initiated a 48-hour strike causing severe delays at one of the world's busiest ports.", 0.81, "Shanghai", "Electronics"},
	{"Panama Canal Congestion", "Increased traffic and low water levels causing significant vessel queuing and delays.", 0.68, "Panama City", "Oil"},
	{"Port of Rotterdam Weather Delays", "Severe winter storm causing operational delays and equipment failures.", 0.45, "Rotterdam", "Grains"},
	{"Suez Canal Traffic Incident", "Vessel collision requiring emergency response and temporary lane closure.", 0.72, "Suez", "Oil"},
	{"Los Angeles Port Labor Negotiations", "Contract discussions between management and workers causing scheduling uncertainty.", 0.55, "Los Angeles", "Auto Parts"},
	{"Singapore Port System Malfunction", "IT system outage affecting cargo tracking and vessel scheduling for 8 hours.", 0.62, "Singapore", "Electronics"},
	{"Dubai Port Customs Backlog", "Increased security protocols causing extended inspection times.", 0.38, "Dubai", "Pharmaceuticals"},
	{"Hamburg Port Crane Maintenance", "Critical crane inspection causing operational capacity reduction by 30%.", 0.51, "Hamburg", "Auto Parts"},
	{"Port of Hong Kong Typhoon Warning", "Typhoon expected to impact operations; pre-positioning of vessels in progress.", 0.74, "Hong Kong", "Electronics"},
	{"Santos Port Labor Agreement", "New labor agreement reached but temporary worker shortage continues.", 0.33, "Santos", "Grains"},
}

type seedSKU struct {
	name      string
	commodity string
	ports     string
}

var seedSKUs = []seedSKU{
	{"Consumer Electronics - General", "Electronics", "Shanghai,Singapore,Hong Kong"},
	{"Crude Oil - Brent", "Oil", "Dubai,Rotterdam,Suez"},
	{"Wheat and Cereals", "Grains", "Rotterdam,Santos,Hamburg"},
	{"Automotive Components", "Auto Parts", "Los Angeles,Hamburg,Shanghai"},
	{"Pharmaceutical Products", "Pharmaceuticals", "Dubai,Rotterdam,Singapore"},
}

type seedPort struct {
	name      string
	country   string
	region    string
	latitude  float64
	longitude float64
}

// One entry per distinct event port, in first-seen order.
var seedPorts = []seedPort{
	{"Shanghai", "China", "Asia", 31.2304, 121.4737},
	{"Panama City", "Panama", "Americas", 8.9824, -79.5199},
	{"Rotterdam", "Netherlands", "Europe", 51.9244, 4.4777},
	{"Suez", "Egypt", "Middle East", 29.9668, 32.5498},
	{"Los Angeles", "United States", "Americas", 33.7405, -118.2775},
	{"Singapore", "Singapore", "Asia", 1.2644, 103.8223},
	{"Dubai", "United Arab Emirates", "Middle East", 25.0108, 55.0617},
	{"Hamburg", "Germany", "Europe", 53.5461, 9.9661},
	{"Hong Kong", "China", "Asia", 22.3193, 114.1694},
	{"Santos", "Brazil", "Americas", -23.9608, -46.3336},
}

type seedArticle struct {
	title     string
	source    string
	url       string
	summary   string
	sentiment float64
}

var seedArticles = []seedArticle{
	{"Global shipping rates climb as Asian ports face disruption", "Maritime Daily", "https://example.com/news/shipping-rates-climb", "Container rates on major Asia-Europe lanes rose for a third straight week.", 0.32},
	{"Panama Canal authority extends draft restrictions", "Logistics Wire", "https://example.com/news/panama-draft-restrictions", "Low water levels keep transit capacity below seasonal averages.", 0.28},
	{"Rotterdam recovers throughput after storm closures", "Port Technology Review", "https://example.com/news/rotterdam-recovery", "Terminal operators report volumes back within 5% of normal.", 0.66},
	{"Suez transits normalize following lane reopening", "Energy Freight Journal", "https://example.com/news/suez-normalize", "Tanker queues cleared within 48 hours of the incident.", 0.61},
	{"US West Coast labor talks make progress", "Supply Chain Today", "https://example.com/news/west-coast-talks", "Negotiators signal a tentative framework on automation terms.", 0.55},
	{"Singapore upgrades port community system", "Asia Trade Monitor", "https://example.com/news/singapore-pcs-upgrade", "New redundancy measures follow last month's outage.", 0.58},
	{"Typhoon season outlook raises concern for South China ports", "Weather & Trade", "https://example.com/news/typhoon-outlook", "Forecasters expect above-average storm activity through autumn.", 0.24},
	{"Grain exporters weigh Santos labor shortages", "Agri Commodities", "https://example.com/news/santos-grain", "Loading delays could push shipments into the next quarter.", 0.41},
}

// SeedOptions controls the randomness of seeding. Zero values use the wall
// clock and a randomly seeded source.
type SeedOptions struct {
	Now  time.Time
	Rand *rand.Rand
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// Seed populates events, skus, ports and articles in one transaction when the
// events table is empty. Any failure rolls the whole catalogue back.
func (db *DB) Seed(opts SeedOptions) error {
	opts = opts.withDefaults()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return fmt.Errorf("counting events: %w", err)
	}
	if count > 0 {
		return nil
	}

	regions := make(map[string]string, len(seedPorts))
	for _, p := range seedPorts {
		regions[p.name] = p.region
	}

	type portStats struct {
		count int
		sum   float64
	}
	stats := make(map[string]*portStats)

	for _, ev := range seedEvents {
		daysAgo := opts.Rand.IntN(31)
		ts := FormatTime(opts.Now.AddDate(0, 0, -daysAgo))
		tags, err := json.Marshal([]string{ev.commodity, ev.port})
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}
		var region any
		if r, ok := regions[ev.port]; ok {
			region = r
		}
		if _, err := tx.Exec(`
			INSERT INTO events (title, summary, severity, port, commodity, region, tags, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.title, ev.summary, ev.severity, ev.port, ev.commodity, region, string(tags), ts); err != nil {
			return fmt.Errorf("seeding event %q: %w", ev.title, err)
		}
		st, ok := stats[ev.port]
		if !ok {
			st = &portStats{}
			stats[ev.port] = st
		}
		st.count++
		st.sum += ev.severity
	}

	for _, s := range seedSKUs {
		risk := round2(0.2 + opts.Rand.Float64()*(0.85-0.2))
		if _, err := tx.Exec(`
			INSERT INTO skus (name, commodity, ports, risk_level) VALUES (?, ?, ?, ?)`,
			s.name, s.commodity, s.ports, risk); err != nil {
			return fmt.Errorf("seeding sku %q: %w", s.name, err)
		}
	}

	for _, p := range seedPorts {
		var risk float64
		var active int
		if st, ok := stats[p.name]; ok {
			active = st.count
			risk = round2(st.sum / float64(st.count))
		}
		if _, err := tx.Exec(`
			INSERT INTO ports (name, country, latitude, longitude, risk_score, active_events)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.name, p.country, p.latitude, p.longitude, risk, active); err != nil {
			return fmt.Errorf("seeding port %q: %w", p.name, err)
		}
	}

	for _, a := range seedArticles {
		published := FormatTime(opts.Now.AddDate(0, 0, -opts.Rand.IntN(15)))
		if _, err := tx.Exec(`
			INSERT INTO articles (title, source, url, summary, sentiment, published_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.title, a.source, a.url, a.summary, a.sentiment, published); err != nil {
			return fmt.Errorf("seeding article %q: %w", a.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	slog.Info("seeded database",
		"events", len(seedEvents), "skus", len(seedSKUs),
		"ports", len(seedPorts), "articles", len(seedArticles))
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
