// internal/types/errors.go

package types

import (
    "errors"
    "fmt"
)

// ErrDockerNotFound indique que le binaire docker est absent du PATH.
// Condition fatale distincte: le processus sort avec le code 127.
var ErrDockerNotFound = errors.New("docker CLI not found")

// InspectError indique que docker a été exécuté mais a échoué
type InspectError struct {
    Ref    string
    Output string // stderr du docker CLI, ou message du daemon
}

func (e *InspectError) Error() string {
    if e.Output != "" {
        return fmt.Sprintf("docker inspect failed for %s: %s", e.Ref, e.Output)
    }
    return fmt.Sprintf("docker inspect failed for %s", e.Ref)
}

// FetchError indique l'épuisement des retries sur un appel au registry
type FetchError struct {
    URL   string
    Cause error
}

func (e *FetchError) Error() string {
    return fmt.Sprintf("HTTP fetch failed for %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
    return e.Cause
}
