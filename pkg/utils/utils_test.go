// pkg/utils/utils_test.go
package utils

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestShortenID(t *testing.T) {
    assert.Equal(t, "24d41d792306", ShortenID("24d41d792306fc3221de215bb6f225fa"))
    assert.Equal(t, "short", ShortenID("short"))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
    attempts := 0
    err := Retry(context.Background(), func() error {
        attempts++
        if attempts < 3 {
            return errors.New("transient")
        }
        return nil
    }, RetryOptions{MaxAttempts: 5, Delay: time.Millisecond})

    require.NoError(t, err)
    assert.Equal(t, 3, attempts)
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
    cause := errors.New("still broken")
    var retried []int

    err := Retry(context.Background(), func() error {
        return cause
    }, RetryOptions{
        MaxAttempts: 3,
        Delay:       time.Millisecond,
        OnRetry: func(attempt int, err error) {
            retried = append(retried, attempt)
        },
    })

    require.Error(t, err)
    assert.ErrorIs(t, err, cause)
    assert.Contains(t, err.Error(), "failed after 3 attempts")
    assert.Equal(t, []int{1, 2, 3}, retried)
}

func TestRetryRespectsContext(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    cancel()

    err := Retry(ctx, func() error {
        return errors.New("never retried")
    }, RetryOptions{MaxAttempts: 3, Delay: time.Millisecond})

    assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryDelayBackoff(t *testing.T) {
    opts := RetryOptions{
        Delay:    time.Second,
        Backoff:  1.5,
        MaxDelay: 8 * time.Second,
    }

    assert.Equal(t, 1500*time.Millisecond, retryDelay(opts, 1))
    assert.Equal(t, 2250*time.Millisecond, retryDelay(opts, 2))
    // Plafonné à MaxDelay pour les tentatives tardives
    assert.Equal(t, 8*time.Second, retryDelay(opts, 10))
}

func TestRetryDelayFixed(t *testing.T) {
    opts := RetryOptions{Delay: 5 * time.Second, Backoff: 1.0}
    assert.Equal(t, 5*time.Second, retryDelay(opts, 1))
    assert.Equal(t, 5*time.Second, retryDelay(opts, 4))
}

func TestParseTime(t *testing.T) {
    for _, in := range []string{
        "2026-08-24 10:30:00",
        "2026-08-24T10:30:00Z",
    } {
        ts, err := ParseTime(in)
        require.NoError(t, err, in)
        assert.Equal(t, 2026, ts.Year())
    }

    _, err := ParseTime("not a time")
    assert.Error(t, err)
}

func TestPrettyJSON(t *testing.T) {
    out := PrettyJSON(map[string]string{"key": "value"})
    assert.Contains(t, out, "\"key\": \"value\"")
}
