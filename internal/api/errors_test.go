package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonghaoch/transaction-service-go/internal/transaction"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantType    string
		wantMessage string
	}{
		{
			name:        "invalid input",
			err:         &transaction.InputError{Field: "transactions", Reason: "field is required"},
			wantStatus:  http.StatusBadRequest,
			wantType:    TypeInvalidRequest,
			wantMessage: "transactions: field is required",
		},
		{
			name:        "wrapped invalid input",
			err:         fmt.Errorf("decode: %w", transaction.ErrInvalidInput),
			wantStatus:  http.StatusBadRequest,
			wantType:    TypeInvalidRequest,
			wantMessage: "decode: invalid input",
		},
		{
			name:        "body too large",
			err:         &http.MaxBytesError{Limit: 10},
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantType:    TypeRequestTooLarge,
			wantMessage: "http: request body too large",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    TypeInternal,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			status := WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	generated := RequestID(req)
	assert.Len(t, generated, 36)

	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", RequestID(req))

	for _, bad := range []string{
		"x total=999 status=200",
		"abc\nforged=1",
		"a\"b",
		strings.Repeat("a", 129),
	} {
		req.Header.Set(RequestIDHeader, bad)
		id := RequestID(req)
		assert.NotEqual(t, bad, id)
		assert.Len(t, id, 36, "header %q", bad)
	}

	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestIDFrom(ctx))
	assert.Empty(t, RequestIDFrom(context.Background()))
}
