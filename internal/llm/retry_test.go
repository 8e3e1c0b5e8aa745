package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var explanationJSON = json.RawMessage(`{"summary":"Your answers suggest a thyroid check.","tips":[]}`)

func TestWithRetry(t *testing.T) {
	unavailable := func() MockResponse {
		return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
	}
	invalid := func() MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`{"summary":`), Err: errors.New("truncated")}}
	}
	ok := MockResponse{Content: explanationJSON}

	cases := []struct {
		name      string
		responses []MockResponse
		wantCalls int
		wantErr   any // pointer to the error type expected, nil for success
	}{
		{"first attempt", []MockResponse{ok}, 1, nil},
		{"outage then success", []MockResponse{unavailable(), ok}, 2, nil},
		{"rate limited then success", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, ok}, 2, nil},
		{"outage exhausts attempts", []MockResponse{unavailable(), unavailable(), unavailable()}, 3, new(*ErrProviderUnavailable)},
		{"invalid retried once", []MockResponse{invalid(), invalid(), ok}, 2, new(*ErrInvalidResponse)},
		{"truncated not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{}`)}}, ok}, 1, new(*ErrMaxTokensExceeded)},
		{"blocked not retried", []MockResponse{{Err: &ErrBlocked{Reason: "safety"}}, ok}, 1, new(*ErrBlocked)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := NewMockProvider(tc.responses...)
			resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})

			assert.Equal(t, tc.wantCalls, mock.CallCount())
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.JSONEq(t, string(explanationJSON), string(resp.Content))
				return
			}
			require.Error(t, err)
			assert.ErrorAs(t, err, tc.wantErr)
		})
	}
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}},
		MockResponse{Content: explanationJSON},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, Request{})
	assert.Error(t, err)
}

func TestRetryAfterHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	assert.Equal(t, 3*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Zero(t, retryAfter(resp), "HTTP-date form is ignored")
	assert.Zero(t, retryAfter(nil))
}

func TestWithRetryKeepsModelID(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastRetry()).ModelID())
}
