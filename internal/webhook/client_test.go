package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAndNormalize_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `[
		{"clientName":"A","phoneNumber":"555-123-4567","haircutType":"Fade","date":"1/2/2025","time":"3:00 PM","status":true,"price":30},
		{"date":"1/2/2025","amount":80},
		{"aiInsights":{"performanceScore":72},"status":"ok"},
		{"noise":1}
	]`)
	c := NewClient(Options{URL: srv.URL, Location: time.UTC}, zaptest.NewLogger(t))

	res, err := c.FetchAndNormalize(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Appointments, 1)
	require.Len(t, res.Expenses, 1)
	require.NotNil(t, res.Insights)
	assert.Equal(t, "(555) 123-4567", res.Appointments[0].PhoneNumber)
	assert.Equal(t, 80.0, res.Expenses[0].Amount)
	assert.Equal(t, 72, res.Insights.PerformanceScore)
	assert.Equal(t, 1, res.Skipped)
}

func TestFetchAndNormalize_EmptyArray(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `[]`)
	c := NewClient(Options{URL: srv.URL}, zaptest.NewLogger(t))

	res, err := c.FetchAndNormalize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Appointments)
	assert.Empty(t, res.Expenses)
}

func TestFetchAndNormalize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		kind     string
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport, KindTransport},
		{"not found", http.StatusNotFound, `[]`, ErrTransport, KindTransport},
		{"object body", http.StatusOK, `{"data":[]}`, ErrShape, KindShape},
		{"null body", http.StatusOK, `null`, ErrShape, KindShape},
		{"empty body", http.StatusOK, ``, ErrShape, KindShape},
		{"truncated array", http.StatusOK, `[{"clientName":"A"`, ErrShape, KindShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body)
			c := NewClient(Options{URL: srv.URL}, zaptest.NewLogger(t))

			res, err := c.FetchAndNormalize(context.Background())
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))

			var fe *FetchError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestFetchAndNormalize_NotConfigured(t *testing.T) {
	c := NewClient(Options{}, zaptest.NewLogger(t))
	assert.False(t, c.Configured())

	_, err := c.FetchAndNormalize(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestFetchAndNormalize_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{URL: url, Timeout: time.Second}, zaptest.NewLogger(t))
	_, err := c.FetchAndNormalize(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFetchAndNormalize_ContextCanceled(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `[]`)
	c := NewClient(Options{URL: srv.URL}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchAndNormalize(ctx)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchAndNormalize_BodyTooLarge(t *testing.T) {
	payload := `[{"clientName":"A","date":"1/2/2025","time":"3:00 PM","status":true,"price":30}]`

	srv := newTestServer(t, http.StatusOK, payload)
	c := NewClient(Options{URL: srv.URL, MaxBodySize: int64(len(payload) - 1)}, zaptest.NewLogger(t))
	_, err := c.FetchAndNormalize(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "response too large")

	c = NewClient(Options{URL: srv.URL, MaxBodySize: int64(len(payload))}, zaptest.NewLogger(t))
	res, err := c.FetchAndNormalize(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Appointments, 1)
}

func TestTriggerRefresh(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"message":"Workflow was started"}`)
	c := NewClient(Options{RefreshURL: srv.URL}, zaptest.NewLogger(t))
	assert.True(t, c.RefreshConfigured())

	body, err := c.TriggerRefresh(context.Background())
	require.NoError(t, err)
	assert.Contains(t, body, "Workflow was started")
}

func TestTriggerRefresh_Errors(t *testing.T) {
	c := NewClient(Options{}, zaptest.NewLogger(t))
	_, err := c.TriggerRefresh(context.Background())
	assert.ErrorIs(t, err, ErrConfig)

	srv := newTestServer(t, http.StatusBadGateway, `down`)
	c = NewClient(Options{RefreshURL: srv.URL}, zaptest.NewLogger(t))
	_, err = c.TriggerRefresh(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "", KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, KindShape, KindOf(shapeError(errors.New("x"))))
	assert.Contains(t, transportError(errors.New("dial")).Error(), "dial")
}
