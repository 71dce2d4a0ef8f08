// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"stocksense/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)

	// Saved analyses
	SaveAnalysis(ctx context.Context, analysis *models.SavedAnalysis) error
	GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]models.SavedAnalysis, error)
	GetAnalysisByID(ctx context.Context, id string) (*models.SavedAnalysis, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Watchlist
	AddToWatchlist(ctx context.Context, symbol, listName string) error
	RemoveFromWatchlist(ctx context.Context, symbol, listName string) error
	GetWatchlist(ctx context.Context, listName string) ([]string, error)
	GetAllWatchlists(ctx context.Context) (map[string][]string, error)

	// Lifecycle
	Close() error
}

// AnalysisFilter represents filters for querying saved analyses.
type AnalysisFilter struct {
	Symbol    string
	Signal    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
