package db

import "strings"

type Event struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Severity       float64  `json:"severity"`
	Port           string   `json:"port"`
	Commodity      string   `json:"commodity"`
	Region         *string  `json:"region"`
	Source         *string  `json:"source"`
	SentimentScore *float64 `json:"sentiment_score"`
	Tags           []string `json:"tags"`
	Timestamp      string   `json:"timestamp"`
}

type SKU struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Commodity string  `json:"commodity"`
	Ports     string  `json:"ports"`
	RiskLevel float64 `json:"risk_level"`
}

// PortNames splits the denormalized comma-joined port list.
func (s SKU) PortNames() []string {
	if s.Ports == "" {
		return nil
	}
	parts := strings.Split(s.Ports, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

type Port struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RiskScore    float64 `json:"risk_score"`
	ActiveEvents int     `json:"active_events"`
}

// PortRisk is the per-port analytics projection.
type PortRisk struct {
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	RiskScore    float64 `json:"risk_score"`
	ActiveEvents int     `json:"active_events"`
}

type Article struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	URL         *string  `json:"url"`
	Summary     string   `json:"summary"`
	Sentiment   *float64 `json:"sentiment"`
	PublishedAt string   `json:"published_at"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// ForecastRecord is one stored point of a previously generated forecast.
type ForecastRecord struct {
	ID           int64    `json:"id"`
	SKUID        int64    `json:"sku_id"`
	ForecastDate string   `json:"forecast_date"`
	Risk         float64  `json:"risk"`
	UpperBound   *float64 `json:"upper_bound"`
	LowerBound   *float64 `json:"lower_bound"`
	CreatedAt    string   `json:"created_at"`
}
