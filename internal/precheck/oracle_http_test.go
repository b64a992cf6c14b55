package precheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func TestHTTPOracleDecodesEnvelopedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/class-groups/cg-1/check-conflicts", r.URL.Path)

		var req models.ConflictCheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.Monday, req.Day)
		assert.Equal(t, "Room101", req.Location)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": models.ConflictCheckResult{
				HasConflict:  true,
				Message:      "room busy",
				ConflictType: []models.ConflictType{models.ConflictClassroom},
			},
		})
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second, zap.NewNop())
	result, err := oracle.CheckConflicts(context.Background(), "cg-1", models.ConflictCheckRequest{
		Day: models.Monday, StartTime: "09:00", EndTime: "10:00", Location: "Room101",
	})

	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, "room busy", result.Message)
}

func TestHTTPOracleDecodesBareResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ConflictCheckResult{HasConflict: false})
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second, zap.NewNop())
	result, err := oracle.CheckConflicts(context.Background(), "cg-1", models.ConflictCheckRequest{
		Day: models.Monday, StartTime: "09:00", EndTime: "10:00",
	})

	require.NoError(t, err)
	assert.False(t, result.HasConflict)
}

func TestHTTPOracleNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second, zap.NewNop())
	_, err := oracle.CheckConflicts(context.Background(), "cg-1", models.ConflictCheckRequest{
		Day: models.Monday, StartTime: "09:00", EndTime: "10:00",
	})

	assert.Error(t, err)
}
