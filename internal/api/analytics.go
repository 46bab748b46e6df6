package api

import (
	"net/http"
	"time"

	"github.com/ApexYash11/TradeguardAI/internal/analytics"
	"github.com/ApexYash11/TradeguardAI/internal/db"
)

// --- News ---

func (a *API) handleListNews(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 20)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	articles, err := a.db.ListArticles(limit)
	if err != nil {
		storeError(w, r, err, "Article")
		return
	}
	jsonResp(w, http.StatusOK, nonNil(articles))
}

func (a *API) handleSentiment(w http.ResponseWriter, r *http.Request) {
	values, err := a.db.ArticleSentiments()
	if err != nil {
		storeError(w, r, err, "Article")
		return
	}
	jsonResp(w, http.StatusOK, analytics.Sentiment(values))
}

// --- Analytics ---

func (a *API) handleGTRI(w http.ResponseWriter, r *http.Request) {
	samples, err := a.db.RecentSeverities(analytics.WindowSize)
	if err != nil {
		storeError(w, r, err, "Event")
		return
	}
	in := make([]analytics.Sample, len(samples))
	for i, s := range samples {
		in[i] = analytics.Sample(s)
	}
	jsonResp(w, http.StatusOK, analytics.ComputeGTRI(in, time.Now()))
}

func (a *API) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30, maxDays)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cutoff := db.FormatTime(time.Now().AddDate(0, 0, -days))
	rows, err := a.db.EventsSince(cutoff)
	if err != nil {
		storeError(w, r, err, "Event")
		return
	}
	points := make([]analytics.Point, len(rows))
	for i, row := range rows {
		points[i] = analytics.Point(row)
	}
	jsonResp(w, http.StatusOK, nonNil(analytics.DailyTrend(points)))
}

func (a *API) handlePortAnalytics(w http.ResponseWriter, r *http.Request) {
	ranking, err := a.db.PortRiskRanking()
	if err != nil {
		storeError(w, r, err, "Port")
		return
	}
	jsonResp(w, http.StatusOK, ranking)
}
