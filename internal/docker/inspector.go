// internal/docker/inspector.go
package docker

import (
    "context"
)

// Inspector est le contrat minimal envers le moteur local: la liste
// structurée des repo-digests d'une image, et son ID de contenu local.
// Permet de tester le resolver avec des fakes.
type Inspector interface {
    // RepoDigests retourne les entrées brutes "repo@sha256:..." que le
    // moteur associe à la référence
    RepoDigests(ctx context.Context, ref string) ([]string, error)

    // ImageID retourne le config-digest local (.Id), signal de repli
    // quand RepoDigests est vide
    ImageID(ctx context.Context, ref string) (string, error)

    Close() error
}
