package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

func TestClientGetWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxRetries   int
		wantStatus   int
		wantAttempts int32
		wantFailure  *ports.UpstreamError
	}{
		{
			name:         "retries on 503 then succeeds",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK},
			maxRetries:   3,
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
		},
		{
			name:         "exhausts retries on 429",
			statuses:     []int{http.StatusTooManyRequests},
			maxRetries:   2,
			wantAttempts: 2,
			wantFailure:  &ports.UpstreamError{Op: "top artists", Status: http.StatusTooManyRequests, Detail: "slow down"},
		},
		{
			name:         "does not retry 401",
			statuses:     []int{http.StatusUnauthorized},
			maxRetries:   3,
			wantStatus:   http.StatusUnauthorized,
			wantAttempts: 1,
		},
		{
			name:         "zero budget uses the default",
			statuses:     []int{http.StatusBadGateway},
			maxRetries:   0,
			wantAttempts: defaultMaxRetries,
			wantFailure:  &ports.UpstreamError{Op: "top artists", Status: http.StatusBadGateway, Detail: "slow down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts, authorized atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "Bearer tok" {
					authorized.Add(1)
				}
				n := int(attempts.Add(1))
				status := tt.statuses[len(tt.statuses)-1]
				if n <= len(tt.statuses) {
					status = tt.statuses[n-1]
				}
				w.WriteHeader(status)
				if status != http.StatusOK {
					_, _ = w.Write([]byte("slow down\n"))
				}
			}))
			defer ts.Close()

			client := NewClient(ts.Client(), ts.URL, WithRetry(tt.maxRetries, time.Millisecond))

			resp, err := client.getWithRetry(context.Background(), "top artists", "tok", ts.URL+"/me/top/artists")
			if tt.wantFailure != nil {
				var upstream ports.UpstreamError
				require.ErrorAs(t, err, &upstream)
				assert.Equal(t, *tt.wantFailure, upstream)
			} else {
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}
			assert.Equal(t, tt.wantAttempts, attempts.Load())
			assert.Equal(t, tt.wantAttempts, authorized.Load())
		})
	}
}

func TestClientGetWithRetry_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := ts.URL
	ts.Close()

	client := NewClient(ts.Client(), target, WithRetry(2, time.Millisecond))
	_, err := client.TopArtists(context.Background(), "tok", 5)

	require.ErrorIs(t, err, ports.ErrUpstream)
	var upstream ports.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 0, upstream.Status)
	assert.Equal(t, "top artists", upstream.Op)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{header: "", want: 0},
		{header: "2", want: 2 * time.Second},
		{header: " 3 ", want: 3 * time.Second},
		{header: "-1", want: 0},
		{header: "3600", want: maxRetryAfter},
		{header: "soon", want: 0},
		{header: "Mon, 02 Jan 2006 15:04:05 GMT", want: 0},
	}
	for _, tt := range tests {
		resp := &http.Response{Header: http.Header{}}
		if tt.header != "" {
			resp.Header.Set("Retry-After", tt.header)
		}
		assert.Equal(t, tt.want, parseRetryAfter(resp), "header %q", tt.header)
	}
}

func TestClientGetWithRetry_Canceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, WithRetry(5, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.getWithRetry(ctx, "recently played", "tok", ts.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
