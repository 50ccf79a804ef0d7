// internal/docker/cli.go
package docker

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os/exec"
    "strings"

    "github.com/sirupsen/logrus"

    "revlookup/internal/types"
    "revlookup/internal/types/options"
)

// CLIInspector interroge le moteur local via le binaire docker.
// C'est le backend par défaut: il ne demande que le CLI dans le PATH.
type CLIInspector struct {
    binary string
    logger *logrus.Logger
}

// NewCLIInspector crée un inspecteur basé sur le docker CLI
func NewCLIInspector(logger *logrus.Logger) *CLIInspector {
    return &CLIInspector{
        binary: "docker",
        logger: logger,
    }
}

// RepoDigests exécute `docker image inspect --format {{json .RepoDigests}}`
func (c *CLIInspector) RepoDigests(ctx context.Context, ref string) ([]string, error) {
    out, err := c.inspect(ctx, ref, "{{json .RepoDigests}}")
    if err != nil {
        return nil, err
    }

    raw := strings.TrimSpace(out)
    if raw == "" || raw == "null" {
        raw = "[]"
    }

    var digests []string
    if err := json.Unmarshal([]byte(raw), &digests); err != nil {
        return nil, fmt.Errorf("unexpected docker inspect output %q: %w", out, err)
    }

    c.logger.Debugf("RepoDigests raw: %v", digests)
    return digests, nil
}

// ImageID exécute `docker image inspect --format {{.Id}}`
func (c *CLIInspector) ImageID(ctx context.Context, ref string) (string, error) {
    out, err := c.inspect(ctx, ref, "{{.Id}}")
    if err != nil {
        return "", err
    }
    id := strings.TrimSpace(out)
    if strings.HasPrefix(id, "sha256:") {
        c.logger.Debugf(".Id (config) = %s", id)
    }
    return id, nil
}

// inspect exécute une requête d'inspection et retourne stdout.
// Distingue le binaire absent (ErrDockerNotFound) d'un échec d'exécution.
func (c *CLIInspector) inspect(ctx context.Context, ref, format string) (string, error) {
    ctx, cancel := context.WithTimeout(ctx, options.DefaultInspectTimeout)
    defer cancel()

    cmd := exec.CommandContext(ctx, c.binary, "image", "inspect", ref, "--format", format)
    c.logger.Debugf("RUN: %s", strings.Join(cmd.Args, " "))

    var stdout, stderr bytes.Buffer
    cmd.Stdout = &stdout
    cmd.Stderr = &stderr

    if err := cmd.Run(); err != nil {
        if errors.Is(err, exec.ErrNotFound) {
            return "", fmt.Errorf("%w: %v", types.ErrDockerNotFound, err)
        }
        msg := strings.TrimSpace(stderr.String())
        if msg == "" {
            msg = strings.TrimSpace(stdout.String())
        }
        return "", &types.InspectError{Ref: ref, Output: msg}
    }

    return stdout.String(), nil
}

// Close ne fait rien pour le backend CLI
func (c *CLIInspector) Close() error {
    return nil
}
