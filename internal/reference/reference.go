// internal/reference/reference.go
package reference

import (
    "sort"
    "strings"
)

const (
    // DefaultTag est appliqué quand la référence ne porte pas de tag
    DefaultTag = "latest"

    // OfficialNamespace est le namespace des images officielles sur Docker Hub
    OfficialNamespace = "library"
)

// registryPrefixes sont les préfixes d'hôte du registry par défaut,
// retirés lors de la normalisation
var registryPrefixes = []string{
    "docker.io/",
    "index.docker.io/",
    "registry-1.docker.io/",
}

// Normalize canonicalise une référence utilisateur en paire (repository, tag).
// Transformation pure: idempotente et sans effet de bord.
func Normalize(ref string) (string, string) {
    for _, p := range registryPrefixes {
        if strings.HasPrefix(ref, p) {
            ref = ref[len(p):]
            break
        }
    }

    repo, tag := ref, DefaultTag
    if i := strings.LastIndex(ref, ":"); i >= 0 {
        repo, tag = ref[:i], ref[i+1:]
    }

    if !strings.Contains(repo, "/") {
        repo = OfficialNamespace + "/" + repo
    }

    return repo, tag
}

// ForOutput retire le préfixe library/ pour l'affichage
func ForOutput(repo string) string {
    return strings.TrimPrefix(repo, OfficialNamespace+"/")
}

// Variants retourne les orthographes acceptées d'un repository telles
// qu'elles peuvent apparaître dans .RepoDigests
func Variants(repo string) []string {
    short := ForOutput(repo)
    variants := []string{short}
    for _, p := range registryPrefixes {
        variants = append(variants, p+short)
    }
    return variants
}

// MatchDigests filtre une liste d'entrées "repo@sha256:..." et retourne,
// triés, les digests dont la partie gauche se termine par une des
// orthographes acceptées du repository.
//
// Le test est un suffixe strict, volontairement: voir Variants.
func MatchDigests(entries []string, repo string) []string {
    variants := Variants(repo)

    seen := make(map[string]struct{})
    for _, entry := range entries {
        if !strings.Contains(entry, "@sha256:") {
            continue
        }
        i := strings.Index(entry, "@")
        left, digest := entry[:i], entry[i+1:]
        for _, v := range variants {
            if strings.HasSuffix(left, v) {
                seen[digest] = struct{}{}
                break
            }
        }
    }

    matched := make([]string, 0, len(seen))
    for d := range seen {
        matched = append(matched, d)
    }
    sort.Strings(matched)
    return matched
}
