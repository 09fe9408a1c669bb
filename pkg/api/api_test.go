package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/health"
	"github.com/opd-ai/go-starstrike/pkg/store"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

const (
	walletA = "0x1111111111111111111111111111111111111111"
	walletB = "0x2222222222222222222222222222222222222222"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), config.StorageConfig{
		Driver:             config.DriverSQLite,
		DSN:                ":memory:",
		BreakerMaxRequests: 1,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     time.Minute,
		BreakerMaxFailures: 5,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestRouter(t *testing.T, s Store, limiter *validation.RateLimiter) *gin.Engine {
	t.Helper()
	hc := health.NewHealthChecker()
	if p, ok := s.(health.Pinger); ok {
		hc.AddCheck(health.NewStoreHealthCheck(p))
	}
	r, err := NewRouter(Options{Store: s, Health: hc, Limiter: limiter})
	require.NoError(t, err)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNewRouter_RequiresStore(t *testing.T) {
	_, err := NewRouter(Options{})
	assert.Error(t, err)
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)

	w := do(r, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[health.HealthStatus](t, w)
	assert.Equal(t, "healthy", status.Checks["store"].Status)
}

func TestMissions(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)

	w := do(r, http.MethodGet, "/api/missions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Missions []MissionView `json:"missions"`
	}](t, w)
	require.Len(t, list.Missions, 3)
	assert.Equal(t, "Nebula Run", list.Missions[0].Name)
	assert.True(t, list.Missions[1].HasMeteors)

	w = do(r, http.MethodGet, "/api/missions/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pirate Ambush", decode[MissionView](t, w).Name)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/missions/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/missions/abc", nil).Code)
}

func TestProfileLifecycle(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)

	w := do(r, http.MethodGet, "/api/profile/"+walletA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/profile/"+walletA+"/ticket", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, DefaultTicketLives, decode[ProfileView](t, w).Lives)

	w = do(r, http.MethodPut, "/api/profile/"+walletA+"/username", UsernameRequest{Username: "  ace  "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ace", decode[ProfileView](t, w).Username)

	w = do(r, http.MethodPost, "/api/profile/"+walletA+"/results", ResultRequest{Score: 1200, Wave: 4, Mission: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[ProfileView](t, w)
	assert.Equal(t, 1200, p.HighScore)
	assert.Equal(t, 1, p.GamesPlayed)
	assert.Equal(t, 0, p.Lives)
	assert.NotNil(t, p.LastPlayed)

	w = do(r, http.MethodPost, "/api/profile/"+walletA+"/ticket", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DefaultTicketLives, decode[ProfileView](t, w).Lives)
}

func TestWalletIsNormalized(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)
	mixed := "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/profile/"+mixed+"/ticket", nil).Code)
	w := do(r, http.MethodGet, "/api/profile/"+strings.ToLower(mixed), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, strings.ToLower(mixed), decode[ProfileView](t, w).Wallet)
}

func TestValidationErrors(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad wallet", http.MethodGet, "/api/profile/0x123", nil, http.StatusBadRequest},
		{"negative score", http.MethodPost, "/api/profile/" + walletA + "/results", ResultRequest{Score: -1, Wave: 1, Mission: 1}, http.StatusBadRequest},
		{"score too high", http.MethodPost, "/api/profile/" + walletA + "/results", ResultRequest{Score: validation.MaxScore + 1, Wave: 1, Mission: 1}, http.StatusBadRequest},
		{"wave zero", http.MethodPost, "/api/profile/" + walletA + "/results", ResultRequest{Score: 10, Wave: 0, Mission: 1}, http.StatusBadRequest},
		{"unknown mission", http.MethodPost, "/api/profile/" + walletA + "/results", ResultRequest{Score: 10, Wave: 1, Mission: 7}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/profile/" + walletA + "/results", "{", http.StatusBadRequest},
		{"empty username", http.MethodPut, "/api/profile/" + walletA + "/username", UsernameRequest{Username: " "}, http.StatusBadRequest},
		{"username for missing profile", http.MethodPut, "/api/profile/" + walletB + "/username", UsernameRequest{Username: "bob"}, http.StatusNotFound},
		{"oversized body", http.MethodPut, "/api/profile/" + walletA + "/username", `{"username":"` + strings.Repeat("a", validation.MaxBodySize) + `"}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, w.Header().Get(RequestIDHeader), body["request_id"])
		})
	}
}

func TestLeaderboard(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t, s, nil)
	ctx := context.Background()

	for i, score := range []int{300, 900, 600} {
		_, err := s.SaveGameResult(ctx, store.GameResult{
			Wallet:  []string{walletA, walletB, walletA}[i],
			Score:   score,
			Mission: 1,
			Wave:    2,
		})
		require.NoError(t, err)
	}

	w := do(r, http.MethodGet, "/api/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[struct {
		Limit  int         `json:"limit"`
		Scores []ScoreView `json:"scores"`
	}](t, w)
	assert.Equal(t, 2, board.Limit)
	require.Len(t, board.Scores, 2)
	assert.Equal(t, 900, board.Scores[0].Score)
	assert.Equal(t, 1, board.Scores[0].Rank)
	assert.Equal(t, "0x2222...2222", board.Scores[0].Wallet)
	assert.Equal(t, 600, board.Scores[1].Score)

	w = do(r, http.MethodGet, "/api/leaderboard?limit=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.MaxLeaderboardLimit, decode[struct {
		Limit int `json:"limit"`
	}](t, w).Limit)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/leaderboard?limit=x", nil).Code)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) Leaderboard(context.Context, int) ([]store.ScoreEntry, error) {
	return nil, f.err
}

func TestLeaderboard_StoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"breaker open", fmt.Errorf("leaderboard: circuit breaker: %w", gobreaker.ErrOpenState), http.StatusServiceUnavailable},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, failingStore{err: tt.err}, nil)
			w := do(r, http.MethodGet, "/api/leaderboard", nil)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := validation.NewRateLimiter(2, time.Hour)
	t.Cleanup(limiter.Close)
	r := newTestRouter(t, newTestStore(t), limiter)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/missions", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/missions", nil).Code)
	w := do(r, http.MethodGet, "/api/missions", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// probes are not limited
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health/live", nil).Code)
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, newTestStore(t), nil)

	w := do(r, http.MethodGet, "/api/missions", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/missions", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(RequestIDHeader))
}
