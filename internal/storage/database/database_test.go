// internal/storage/database/database_test.go
package database

import (
    "io"
    "path/filepath"
    "testing"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "revlookup/internal/types"
    "revlookup/internal/types/options"
)

func testDB(t *testing.T) *Database {
    t.Helper()

    logger := logrus.New()
    logger.SetOutput(io.Discard)

    db, err := NewDatabase(filepath.Join(t.TempDir(), "revlookup.db"), logger)
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    return db
}

func sampleResult(input, bestGuess string) *types.ResolveResult {
    buckets := &types.TagBuckets{
        Versions: []string{bestGuess},
        Latest:   []string{"latest"},
        Others:   []string{},
    }
    return &types.ResolveResult{
        Input:            input,
        Repository:       "ollama/ollama",
        LocalRepoDigests: []string{"sha256:abc"},
        LocalID:          "sha256:config",
        MappingPossible:  true,
        Tags:             buckets,
        AllTags:          buckets.All(),
        BestGuess:        bestGuess,
    }
}

func TestSaveAndLastResolution(t *testing.T) {
    db := testDB(t)

    id, err := db.SaveResolution(sampleResult("ollama/ollama:latest", "0.11.10"))
    require.NoError(t, err)
    assert.Greater(t, id, int64(0))

    _, err = db.SaveResolution(sampleResult("ollama/ollama:latest", "0.11.11"))
    require.NoError(t, err)

    last, err := db.LastResolution("ollama/ollama:latest")
    require.NoError(t, err)
    require.NotNil(t, last)
    assert.Equal(t, "0.11.11", last.BestGuess)
    assert.True(t, last.MappingPossible)
}

func TestLastResolutionMissing(t *testing.T) {
    db := testDB(t)

    last, err := db.LastResolution("never-seen")
    require.NoError(t, err)
    assert.Nil(t, last)
}

func TestSaveNoMappingResult(t *testing.T) {
    db := testDB(t)

    _, err := db.SaveResolution(&types.ResolveResult{
        Input:           "local-build",
        Repository:      "local-build",
        LocalID:         "sha256:config",
        MappingPossible: false,
        Note:            "no digests",
    })
    require.NoError(t, err)

    last, err := db.LastResolution("local-build")
    require.NoError(t, err)
    require.NotNil(t, last)
    assert.False(t, last.MappingPossible)
    assert.Empty(t, last.BestGuess)
}

func TestGetHistoryFilters(t *testing.T) {
    db := testDB(t)

    _, err := db.SaveResolution(sampleResult("ollama/ollama:latest", "0.11.11"))
    require.NoError(t, err)
    _, err = db.SaveResolution(sampleResult("ubuntu", "24.04.1"))
    require.NoError(t, err)

    // Filtre par référence
    entries, err := db.GetHistory(options.HistoryOptions{Input: []string{"ubuntu"}})
    require.NoError(t, err)
    require.Len(t, entries, 1)
    assert.Equal(t, "ubuntu", entries[0].Input)

    // Recherche
    entries, err = db.GetHistory(options.HistoryOptions{Search: "0.11"})
    require.NoError(t, err)
    require.Len(t, entries, 1)
    assert.Equal(t, "ollama/ollama:latest", entries[0].Input)

    // Limite
    entries, err = db.GetHistory(options.HistoryOptions{Limit: 1})
    require.NoError(t, err)
    assert.Len(t, entries, 1)
}

func TestGetHistoryLastPerInput(t *testing.T) {
    db := testDB(t)

    for _, v := range []string{"0.11.10", "0.11.11"} {
        _, err := db.SaveResolution(sampleResult("ollama/ollama:latest", v))
        require.NoError(t, err)
    }
    _, err := db.SaveResolution(sampleResult("ubuntu", "24.04.1"))
    require.NoError(t, err)

    entries, err := db.GetHistory(options.HistoryOptions{Last: true})
    require.NoError(t, err)
    assert.Len(t, entries, 2)
}

func TestCleanupEntries(t *testing.T) {
    db := testDB(t)

    for _, v := range []string{"0.11.9", "0.11.10", "0.11.11"} {
        _, err := db.SaveResolution(sampleResult("ollama/ollama:latest", v))
        require.NoError(t, err)
    }

    require.NoError(t, db.CleanupEntries("ollama/ollama:latest", 2))

    entries, err := db.GetHistory(options.HistoryOptions{})
    require.NoError(t, err)
    assert.Len(t, entries, 2)

    // La plus récente survit
    last, err := db.LastResolution("ollama/ollama:latest")
    require.NoError(t, err)
    require.NotNil(t, last)
    assert.Equal(t, "0.11.11", last.BestGuess)
}
