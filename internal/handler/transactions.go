package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tonghaoch/transaction-service-go/internal/api"
	"github.com/tonghaoch/transaction-service-go/internal/config"
	"github.com/tonghaoch/transaction-service-go/internal/logger"
	"github.com/tonghaoch/transaction-service-go/internal/state"
	"github.com/tonghaoch/transaction-service-go/internal/transaction"
)

// TotalResponse is the body of a successful POST /transactions/total.
type TotalResponse struct {
	Total float64 `json:"total"`
}

// TransactionsTotal handles POST /transactions/total. The body must be
// {"transactions": [number, ...]}; it is decoded by transaction.Decoder so a
// missing or mistyped field is rejected rather than read as zero values.
func TransactionsTotal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cfg := config.Get()
	rec := state.RequestRecord{
		ID:        api.RequestIDFrom(r.Context()),
		Timestamp: start,
		Total:     decimal.Zero,
	}
	if rec.ID == "" {
		rec.ID = api.RequestID(r)
	}

	total, err := computeTotal(w, r, cfg, &rec)
	if err != nil {
		rec.StatusCode = api.WriteError(w, err)
		rec.Error = err.Error()
	} else {
		rec.StatusCode = http.StatusOK
		api.WriteJSON(w, http.StatusOK, TotalResponse{Total: total})
	}

	rec.LatencyMs = time.Since(start).Milliseconds()
	state.Metrics.RecordRequest(rec)
	logger.For("transactions").Log(
		"request_id", rec.ID,
		"count", rec.Transactions,
		"positive", rec.Positive,
		"total", rec.Total,
		"status", rec.StatusCode,
	)
}

func computeTotal(w http.ResponseWriter, r *http.Request, cfg *config.Config, rec *state.RequestRecord) (float64, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	batch, err := transaction.Decoder{MaxTransactions: cfg.MaxTransactions}.Decode(body)
	if err != nil {
		return 0, err
	}
	rec.Transactions = len(batch)
	rec.Positive = batch.Positive()

	total, err := batch.TotalFloat64()
	if err != nil {
		return 0, err
	}
	rec.Total = batch.Total()
	return total, nil
}
