// internal/types/result.go

package types

import (
    "sort"
    "time"
)

// TagBuckets partitionne les tags réconciliés pour la présentation
type TagBuckets struct {
    Versions []string `json:"versions"` // Tags de version (v?X.Y.Z...), tri lexicographique
    Latest   []string `json:"latest"`   // Le tag littéral "latest"
    Others   []string `json:"others"`   // Tout le reste, tri lexicographique
}

// BestGuess retourne la version la plus probable: dernière version,
// sinon "latest", sinon le premier des autres tags
func (b TagBuckets) BestGuess() string {
    if len(b.Versions) > 0 {
        return b.Versions[len(b.Versions)-1]
    }
    if len(b.Latest) > 0 {
        return b.Latest[0]
    }
    if len(b.Others) > 0 {
        return b.Others[0]
    }
    return ""
}

// All retourne l'ensemble des tags, triés
func (b TagBuckets) All() []string {
    all := make([]string, 0, len(b.Versions)+len(b.Latest)+len(b.Others))
    all = append(all, b.Versions...)
    all = append(all, b.Latest...)
    all = append(all, b.Others...)
    sort.Strings(all)
    return all
}

// ResolveResult est le document produit par une résolution
type ResolveResult struct {
    Input            string      `json:"input"`
    Repository       string      `json:"repository"`
    LocalRepoDigests []string    `json:"local_repo_digests"`
    LocalID          string      `json:"local_id,omitempty"`
    MappingPossible  bool        `json:"mapping_possible"`
    Note             string      `json:"note,omitempty"`
    Tags             *TagBuckets `json:"tags,omitempty"`
    AllTags          []string    `json:"all_tags_sorted,omitempty"`
    BestGuess        string      `json:"best_guess,omitempty"`
    ScanAll          bool        `json:"scan_all"`
    MaxPages         int         `json:"max_pages"`
}

// ResolutionEntry est une entrée de l'historique des résolutions
type ResolutionEntry struct {
    ID              int64     `json:"id"`
    Input           string    `json:"input"`
    Repository      string    `json:"repository"`
    LocalID         string    `json:"local_id,omitempty"`
    BestGuess       string    `json:"best_guess,omitempty"`
    MappingPossible bool      `json:"mapping_possible"`
    Tags            string    `json:"tags,omitempty"`
    CreatedAt       time.Time `json:"created_at"`
}
