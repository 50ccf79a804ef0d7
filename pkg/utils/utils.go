// pkg/utils/utils.go
package utils

import (
    "context"
    "encoding/json"
    "fmt"
    "math"
    "time"
)

// Docker ID helpers
// ----------------

// ShortenID raccourcit un ID Docker à sa forme courte (12 caractères)
func ShortenID(id string) string {
    if len(id) > 12 {
        return id[:12]
    }
    return id
}

// JSON helpers
// -----------

// PrettyJSON retourne une représentation JSON indentée
func PrettyJSON(v interface{}) string {
    b, err := json.MarshalIndent(v, "", "  ")
    if err != nil {
        return fmt.Sprintf("error marshaling JSON: %v", err)
    }
    return string(b)
}

// Retry helpers
// ------------

// RetryOptions définit les options pour la fonction Retry
type RetryOptions struct {
    MaxAttempts int
    Delay       time.Duration
    Backoff     float64       // Multiplicateur exponentiel, 1.0 = délai fixe
    MaxDelay    time.Duration // Plafond par tentative
    OnRetry     func(attempt int, err error)
}

// Retry exécute une fonction avec retry et backoff exponentiel
func Retry(ctx context.Context, fn func() error, opts RetryOptions) error {
    if opts.MaxAttempts == 0 {
        opts.MaxAttempts = 3
    }
    if opts.Delay == 0 {
        opts.Delay = time.Second * 5
    }
    if opts.Backoff == 0 {
        opts.Backoff = 1.0
    }

    var lastErr error
    for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
        select {
        case <-ctx.Done():
            return ctx.Err()
        default:
            if err := fn(); err == nil {
                return nil
            } else {
                lastErr = err
                if opts.OnRetry != nil {
                    opts.OnRetry(attempt, err)
                }
                if attempt < opts.MaxAttempts {
                    time.Sleep(retryDelay(opts, attempt))
                }
            }
        }
    }
    return fmt.Errorf("failed after %d attempts: %w", opts.MaxAttempts, lastErr)
}

// retryDelay calcule le délai pour une tentative donnée
func retryDelay(opts RetryOptions, attempt int) time.Duration {
    d := time.Duration(float64(opts.Delay) * math.Pow(opts.Backoff, float64(attempt)))
    if opts.MaxDelay > 0 && d > opts.MaxDelay {
        d = opts.MaxDelay
    }
    return d
}

// Time helpers
// -----------

// ParseTime essaie de parser une chaîne de date avec différents formats
func ParseTime(timeStr string) (time.Time, error) {
    for _, layout := range []string{
        "2006-01-02 15:04:05",
        time.RFC3339,
        "2006-01-02T15:04:05Z07:00",
        time.RFC3339Nano,
    } {
        if t, err := time.Parse(layout, timeStr); err == nil {
            return t, nil
        }
    }
    return time.Time{}, fmt.Errorf("failed to parse time: %q", timeStr)
}
