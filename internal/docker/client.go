// internal/docker/client.go
package docker

import (
    "context"
    "fmt"

    "github.com/docker/docker/client"
    "github.com/sirupsen/logrus"

    "revlookup/internal/types"
)

// APIInspector interroge le moteur local via l'API Docker Engine.
// Backend alternatif (--engine api) pour les environnements sans CLI
// mais avec accès au socket.
type APIInspector struct {
    cli    *client.Client
    logger *logrus.Logger
}

// NewAPIInspector crée un inspecteur basé sur l'API Docker
func NewAPIInspector(logger *logrus.Logger) (*APIInspector, error) {
    logger.Debug("Creating new Docker client...")

    cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
    if err != nil {
        return nil, fmt.Errorf("failed to create Docker client: %w", err)
    }

    // Test connection
    ctx := context.Background()
    if _, err := cli.Ping(ctx); err != nil {
        cli.Close()
        return nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
    }

    logger.Debug("Successfully connected to Docker daemon")

    return &APIInspector{
        cli:    cli,
        logger: logger,
    }, nil
}

// RepoDigests retourne les entrées .RepoDigests de l'image
func (a *APIInspector) RepoDigests(ctx context.Context, ref string) ([]string, error) {
    inspect, _, err := a.cli.ImageInspectWithRaw(ctx, ref)
    if err != nil {
        if client.IsErrNotFound(err) {
            return nil, &types.InspectError{Ref: ref, Output: "no such image"}
        }
        return nil, fmt.Errorf("failed to inspect image: %w", err)
    }

    a.logger.Debugf("RepoDigests raw: %v", inspect.RepoDigests)
    return inspect.RepoDigests, nil
}

// ImageID retourne le .Id (config-digest) de l'image
func (a *APIInspector) ImageID(ctx context.Context, ref string) (string, error) {
    inspect, _, err := a.cli.ImageInspectWithRaw(ctx, ref)
    if err != nil {
        if client.IsErrNotFound(err) {
            return "", &types.InspectError{Ref: ref, Output: "no such image"}
        }
        return "", fmt.Errorf("failed to inspect image: %w", err)
    }
    return inspect.ID, nil
}

// Close ferme le client Docker
func (a *APIInspector) Close() error {
    return a.cli.Close()
}
