package db

import (
	"database/sql"
	"fmt"
)

// ListArticles returns up to limit articles, most recently published first.
func (db *DB) ListArticles(limit int) ([]Article, error) {
	rows, err := db.Query(`
		SELECT id, title, source, url, summary, sentiment, published_at
		FROM articles ORDER BY published_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		var url sql.NullString
		var sentiment sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Title, &a.Source, &url, &a.Summary, &sentiment, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.URL = nullString(url)
		a.Sentiment = nullFloat(sentiment)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ArticleSentiments returns every non-null article sentiment.
func (db *DB) ArticleSentiments() ([]float64, error) {
	rows, err := db.Query(`SELECT sentiment FROM articles WHERE sentiment IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("querying sentiments: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning sentiment: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
