// internal/tags/classify.go
package tags

import (
    "regexp"
    "sort"

    "revlookup/internal/types"
)

// versionRx reconnaît les tags de version: "v" optionnel, trois composantes
// numériques, suffixe pre-release/build optionnel
var versionRx = regexp.MustCompile(`^v?\d+\.\d+\.\d+(?:[.-].+)?$`)

// IsVersion indique si un tag ressemble à une version
func IsVersion(tag string) bool {
    return versionRx.MatchString(tag)
}

// Classify partitionne un ensemble de tags en buckets: le tag littéral
// "latest", les tags de version (tri lexicographique croissant), et le
// reste (tri lexicographique)
func Classify(tagSet map[string]struct{}) types.TagBuckets {
    buckets := types.TagBuckets{
        Versions: []string{},
        Latest:   []string{},
        Others:   []string{},
    }

    for t := range tagSet {
        switch {
        case t == "latest":
            buckets.Latest = append(buckets.Latest, t)
        case IsVersion(t):
            buckets.Versions = append(buckets.Versions, t)
        default:
            buckets.Others = append(buckets.Others, t)
        }
    }

    sort.Strings(buckets.Versions)
    sort.Strings(buckets.Others)

    return buckets
}
