// internal/resolver/resolve.go
package resolver

import (
    "context"
    "fmt"

    "revlookup/internal/reference"
    "revlookup/internal/tags"
    "revlookup/internal/types"
    "revlookup/internal/types/options"
)

// noMappingNote explique l'état terminal "pas de mapping possible"
const noMappingNote = "'.RepoDigests' is empty. Common causes: image built locally " +
    "or pulled from another registry. The '.Id' (config digest) usually cannot " +
    "be mapped reliably to a registry tag."

// Resolve détermine quel(s) tag(s) publié(s) sur Docker Hub correspondent
// à l'image locale désignée par ref.
//
// Un ensemble vide de repo-digests n'est pas une erreur: le résultat porte
// MappingPossible=false et une note explicative.
func (r *Resolver) Resolve(ctx context.Context, ref string, opts options.ResolveOptions) (*types.ResolveResult, error) {
    r.lock.Lock()
    defer r.lock.Unlock()

    repo, tag := reference.Normalize(ref)
    outRepo := reference.ForOutput(repo)
    r.logger.Infof("Input: %s | Hub repo: %s | Tag: %s", ref, repo, tag)

    result := &types.ResolveResult{
        Input:            ref,
        Repository:       outRepo,
        LocalRepoDigests: []string{},
        ScanAll:          opts.ScanAll,
        MaxPages:         opts.MaxPages,
    }

    // 1) Digests locaux (manifeste) via docker inspect
    entries, err := r.inspector.RepoDigests(ctx, ref)
    if err != nil {
        return nil, err
    }
    digests := reference.MatchDigests(entries, repo)

    // 2) .Id en signal de repli, toléré en best-effort
    localID, err := r.inspector.ImageID(ctx, ref)
    if err != nil {
        r.logger.Debugf("Failed to read local image ID: %v", err)
        localID = ""
    }
    result.LocalID = localID

    if len(digests) == 0 {
        // Pas de mapping fiable possible, état terminal légitime
        result.MappingPossible = false
        result.Note = noMappingNote
        r.recordResolution(result, opts)
        return result, nil
    }

    result.LocalRepoDigests = digests
    result.MappingPossible = true
    r.logger.Infof("Local repo digest(s): %v", digests)

    targets := make(map[string]struct{}, len(digests))
    for _, d := range digests {
        targets[d] = struct{}{}
    }

    // 3) Réconciliation paginée sur Docker Hub
    hits, err := r.hub.CollectTags(ctx, repo, targets, opts)
    if err != nil {
        return nil, fmt.Errorf("failed to collect tags from Docker Hub: %w", err)
    }

    buckets := tags.Classify(hits)
    result.Tags = &buckets
    result.AllTags = buckets.All()
    result.BestGuess = buckets.BestGuess()

    r.recordResolution(result, opts)
    return result, nil
}

// recordResolution consigne le résultat dans l'historique. Un échec
// d'écriture n'invalide pas la résolution.
func (r *Resolver) recordResolution(result *types.ResolveResult, opts options.ResolveOptions) {
    if opts.NoHistory || r.db == nil {
        return
    }

    if _, err := r.db.SaveResolution(result); err != nil {
        r.logger.Warnf("Failed to record resolution: %v", err)
        return
    }

    if err := r.db.CleanupEntries(result.Input, r.config.Retention); err != nil {
        r.logger.Warnf("Failed to cleanup old history entries: %v", err)
    }
}
