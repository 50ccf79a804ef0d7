// internal/resolver/resolve_test.go
package resolver

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "revlookup/internal/config"
    "revlookup/internal/hub"
    "revlookup/internal/types"
    "revlookup/internal/types/options"
)

// fakeInspector remplace le moteur Docker dans les tests
type fakeInspector struct {
    digests []string
    id      string
    err     error
}

func (f *fakeInspector) RepoDigests(ctx context.Context, ref string) ([]string, error) {
    return f.digests, f.err
}

func (f *fakeInspector) ImageID(ctx context.Context, ref string) (string, error) {
    return f.id, f.err
}

func (f *fakeInspector) Close() error { return nil }

func testLogger() *logrus.Logger {
    logger := logrus.New()
    logger.SetOutput(io.Discard)
    return logger
}

func newTestResolver(inspector *fakeInspector, hubClient *hub.Client) *Resolver {
    cfg := config.NewConfig()
    cfg.Logger = testLogger()
    return &Resolver{
        inspector: inspector,
        hub:       hubClient,
        config:    cfg,
        logger:    cfg.Logger,
    }
}

func TestResolveNoMappingPossible(t *testing.T) {
    inspector := &fakeInspector{
        digests: []string{},
        id:      "sha256:configdigest",
    }

    r := newTestResolver(inspector, nil)

    result, err := r.Resolve(context.Background(), "my-local-build", options.NewResolveOptions())
    require.NoError(t, err) // état terminal légitime, pas une erreur

    assert.False(t, result.MappingPossible)
    assert.NotEmpty(t, result.Note)
    assert.Equal(t, "sha256:configdigest", result.LocalID)
    assert.Empty(t, result.LocalRepoDigests)
    assert.Nil(t, result.Tags)
}

func TestResolveForeignRegistryDigestsIgnored(t *testing.T) {
    // Des digests existent mais aucun ne porte une orthographe acceptée
    // du repository cible
    inspector := &fakeInspector{
        digests: []string{"ghcr.io/someone/tool@sha256:abc"},
        id:      "sha256:configdigest",
    }

    r := newTestResolver(inspector, nil)

    result, err := r.Resolve(context.Background(), "ubuntu", options.NewResolveOptions())
    require.NoError(t, err)
    assert.False(t, result.MappingPossible)
    assert.Equal(t, "ubuntu", result.Repository)
}

func TestResolveMatchesHubTags(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        json.NewEncoder(w).Encode(hub.TagPage{
            Results: []hub.TagRecord{
                {Name: "latest", Digest: "sha256:abc"},
                {Name: "0.11.11", Digest: "sha256:abc"},
                {Name: "0.10.0", Digest: "sha256:old"},
            },
        })
    }))
    defer srv.Close()

    inspector := &fakeInspector{
        digests: []string{"ollama/ollama@sha256:abc"},
        id:      "sha256:configdigest",
    }

    r := newTestResolver(inspector, hub.NewClientWithBaseURL(srv.URL, testLogger()))

    result, err := r.Resolve(context.Background(), "ollama/ollama:latest",
        options.NewResolveOptions(options.WithScanAll(true)))
    require.NoError(t, err)

    assert.True(t, result.MappingPossible)
    assert.Equal(t, "ollama/ollama", result.Repository)
    assert.Equal(t, []string{"sha256:abc"}, result.LocalRepoDigests)
    require.NotNil(t, result.Tags)
    assert.Equal(t, []string{"0.11.11"}, result.Tags.Versions)
    assert.Equal(t, []string{"latest"}, result.Tags.Latest)
    assert.Equal(t, "0.11.11", result.BestGuess)
}

func TestResolveInspectErrorPropagates(t *testing.T) {
    inspector := &fakeInspector{
        err: &types.InspectError{Ref: "ubuntu", Output: "no such image"},
    }

    r := newTestResolver(inspector, nil)

    _, err := r.Resolve(context.Background(), "ubuntu", options.NewResolveOptions())
    require.Error(t, err)

    var inspectErr *types.InspectError
    assert.ErrorAs(t, err, &inspectErr)
}

func TestResolveImageIDFailureTolerated(t *testing.T) {
    // L'échec de la lecture du .Id ne doit pas invalider la résolution
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        json.NewEncoder(w).Encode(hub.TagPage{
            Results: []hub.TagRecord{{Name: "1.0.0", Digest: "sha256:abc"}},
        })
    }))
    defer srv.Close()

    inspector := &idFailingInspector{digests: []string{"ubuntu@sha256:abc"}}
    r := newTestResolver(&fakeInspector{}, hub.NewClientWithBaseURL(srv.URL, testLogger()))
    r.inspector = inspector

    result, err := r.Resolve(context.Background(), "ubuntu", options.NewResolveOptions())
    require.NoError(t, err)
    assert.True(t, result.MappingPossible)
    assert.Empty(t, result.LocalID)
    assert.Equal(t, "1.0.0", result.BestGuess)
}

type idFailingInspector struct {
    digests []string
}

func (f *idFailingInspector) RepoDigests(ctx context.Context, ref string) ([]string, error) {
    return f.digests, nil
}

func (f *idFailingInspector) ImageID(ctx context.Context, ref string) (string, error) {
    return "", errors.New("id lookup failed")
}

func (f *idFailingInspector) Close() error { return nil }
