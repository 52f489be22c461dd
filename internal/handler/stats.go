package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tonghaoch/transaction-service-go/internal/api"
	"github.com/tonghaoch/transaction-service-go/internal/config"
	"github.com/tonghaoch/transaction-service-go/internal/state"
)

const maxRecentInStats = 50

// statsResponse is the JSON response for GET /api/stats.
type statsResponse struct {
	Service       string                `json:"service"`
	Version       string                `json:"version"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Requests      statsRequests         `json:"requests"`
	Transactions  statsTransactions     `json:"transactions"`
	StatusCounts  map[int]int64         `json:"status_counts"`
	Recent        []state.RequestRecord `json:"recent"`
	Config        statsConfig           `json:"config"`
}

type statsRequests struct {
	Total    int64 `json:"total"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

type statsTransactions struct {
	Count       int64           `json:"count"`
	Positive    int64           `json:"positive"`
	SumOfTotals decimal.Decimal `json:"sum_of_totals"`
}

type statsConfig struct {
	AuthEnabled     bool     `json:"auth_enabled"`
	APIKeyCount     int      `json:"api_key_count"`
	MaxBodyBytes    int64    `json:"max_body_bytes"`
	MaxTransactions int      `json:"max_transactions"`
	AllowedOrigins  []string `json:"allowed_origins"`
	Verbose         bool     `json:"verbose"`
}

// Stats handles GET /api/stats and returns request metrics as JSON.
func Stats(w http.ResponseWriter, r *http.Request) {
	snap := state.Metrics.Snapshot()
	cfg := config.Get()
	apiKeys := config.GetAPIKeys()

	recent := snap.Recent
	if len(recent) > maxRecentInStats {
		recent = recent[:maxRecentInStats]
	}

	agg := snap.Aggregates
	api.WriteJSON(w, http.StatusOK, statsResponse{
		Service:       api.ServiceName,
		Version:       state.Global.GetVersion(),
		UptimeSeconds: int64(time.Since(agg.StartTime).Seconds()),
		Requests: statsRequests{
			Total:    agg.TotalRequests,
			Accepted: agg.AcceptedRequests,
			Rejected: agg.RejectedRequests,
		},
		Transactions: statsTransactions{
			Count:       agg.TotalTransactions,
			Positive:    agg.PositiveCount,
			SumOfTotals: agg.SumOfTotals,
		},
		StatusCounts: agg.StatusCounts,
		Recent:       recent,
		Config: statsConfig{
			AuthEnabled:     len(apiKeys) > 0,
			APIKeyCount:     len(apiKeys),
			MaxBodyBytes:    cfg.MaxBodyBytes,
			MaxTransactions: cfg.MaxTransactions,
			AllowedOrigins:  cfg.CORS.AllowedOrigins,
			Verbose:         state.Global.GetVerbose(),
		},
	})
}
