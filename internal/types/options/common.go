// internal/types/options/common.go

package options

import (
    "time"
)

const (
    // Limites de la recherche paginée sur Docker Hub
    DefaultMaxPages     = 200
    DefaultPageSize     = 100

    // Réseau
    DefaultHTTPTimeout  = 15 * time.Second
    DefaultHTTPRetries  = 5
    DefaultRetryDelay   = 1 * time.Second
    DefaultRetryBackoff = 1.5
    DefaultMaxRetryWait = 8 * time.Second

    // Invocation du docker CLI
    DefaultInspectTimeout = 30 * time.Second
)
