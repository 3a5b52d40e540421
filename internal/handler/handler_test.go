package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"betadmin/internal/apierror"
	"betadmin/internal/dto"
	"betadmin/internal/infra"
	"betadmin/internal/middleware"
	"betadmin/internal/worker"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() { gin.SetMode(gin.TestMode) }

func newPingDB(t *testing.T, pingErr error) *gorm.DB {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	mock.ExpectPing().WillReturnError(pingErr)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tests := []struct {
		name     string
		pingErr  error
		stopRds  bool
		wantCode int
		wantDB   string
		wantRds  string
	}{
		{"all up", nil, false, http.StatusOK, "connected", "connected"},
		{"db down", errors.New("connection refused"), false, http.StatusServiceUnavailable, "error", "connected"},
		{"redis down", nil, true, http.StatusServiceUnavailable, "connected", "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.stopRds {
				mr.Close()
			}
			r := gin.New()
			r.GET("/health", Health(newPingDB(t, tc.pingErr), rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig())))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.wantCode, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantDB, body["db"])
			assert.Equal(t, tc.wantRds, body["redis"])
			assert.Equal(t, "closed", body["mail"])
		})
	}
}

func TestRespondError_MapsTaxonomy(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: nombre vacio", apierror.ErrValidation), http.StatusBadRequest},
		{apierror.ErrUnauthenticated, http.StatusUnauthorized},
		{apierror.ErrAccessDenied, http.StatusForbidden},
		{fmt.Errorf("taquilla %w", apierror.ErrNotFound), http.StatusNotFound},
		{apierror.ErrNumberConflict, http.StatusConflict},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.want, w.Code)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestBindAndValidate_ReportsJSONFieldNames(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req dto.CreateTaquillaRequest
		if !bindAndValidate(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"number": 0}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Equal(t, "required", verr.Fields["number"])
	assert.Equal(t, "required", verr.Fields["betting_center_id"])

	assert.Equal(t, http.StatusBadRequest, post(`{"number":`).Code)
	assert.Equal(t, http.StatusNoContent, post(`{"number": 3, "betting_center_id": "6f1f7f0e-2d1b-4f43-9a47-0c7c1a0f3b11"}`).Code)
}

func TestPathID(t *testing.T) {
	r := gin.New()
	r.GET("/x/:id", func(c *gin.Context) {
		if _, ok := pathID(c, "id"); ok {
			c.Status(http.StatusNoContent)
		}
	})
	for path, want := range map[string]int{
		"/x/abc": http.StatusBadRequest,
		"/x/6f1f7f0e-2d1b-4f43-9a47-0c7c1a0f3b11": http.StatusNoContent,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestDeadLetters(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	for i := 0; i < 3; i++ {
		worker.SendToDLQ(context.Background(), rdb, worker.QueueEmail, "email", json.RawMessage(`{"to_email":""}`), "destinatario vacio", 1)
	}

	r := gin.New()
	r.GET("/dlq", DeadLetters(rdb))
	r.GET("/health", Health(newPingDB(t, nil), rdb, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dlq?limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total   int64             `json:"total"`
		Entries []worker.DLQEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Total)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "destinatario vacio", body.Entries[0].Reason)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dlq?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.EqualValues(t, 3, health["email_dlq"])
}
