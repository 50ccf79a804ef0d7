// internal/reference/reference_test.go
package reference

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
    cases := []struct {
        name string
        ref  string
        repo string
        tag  string
    }{
        {"official image", "ubuntu", "library/ubuntu", "latest"},
        {"official image with tag", "ubuntu:24.04", "library/ubuntu", "24.04"},
        {"namespaced image", "ollama/ollama", "ollama/ollama", "latest"},
        {"namespaced image with tag", "ollama/ollama:latest", "ollama/ollama", "latest"},
        {"docker.io prefix", "docker.io/ollama/ollama:0.1.0", "ollama/ollama", "0.1.0"},
        {"index.docker.io prefix", "index.docker.io/ubuntu", "library/ubuntu", "latest"},
        {"registry-1 prefix", "registry-1.docker.io/nginx:alpine", "library/nginx", "alpine"},
    }

    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            repo, tag := Normalize(tc.ref)
            assert.Equal(t, tc.repo, repo)
            assert.Equal(t, tc.tag, tag)
        })
    }
}

func TestNormalizeIdempotent(t *testing.T) {
    for _, ref := range []string{"ubuntu", "ollama/ollama:latest", "docker.io/nginx:1.25.3"} {
        repo, tag := Normalize(ref)
        repo2, tag2 := Normalize(repo + ":" + tag)
        assert.Equal(t, repo, repo2)
        assert.Equal(t, tag, tag2)
    }
}

func TestForOutput(t *testing.T) {
    assert.Equal(t, "ubuntu", ForOutput("library/ubuntu"))
    assert.Equal(t, "ollama/ollama", ForOutput("ollama/ollama"))
}

func TestVariants(t *testing.T) {
    variants := Variants("library/ubuntu")
    assert.Equal(t, []string{
        "ubuntu",
        "docker.io/ubuntu",
        "index.docker.io/ubuntu",
        "registry-1.docker.io/ubuntu",
    }, variants)
}

func TestMatchDigests(t *testing.T) {
    entries := []string{
        "ollama/ollama@sha256:abc111",
        "docker.io/ollama/ollama@sha256:abc222",
        "someone-else/tool@sha256:abc333",
        "no-digest-entry",
    }

    matched := MatchDigests(entries, "ollama/ollama")
    assert.Equal(t, []string{"sha256:abc111", "sha256:abc222"}, matched)
}

func TestMatchDigestsUnrelatedRepo(t *testing.T) {
    // Même digest, mais la partie gauche ne se termine pas par une
    // orthographe acceptée du repository cible
    entries := []string{"elsewhere/ubuntu-clone@sha256:abc111"}
    assert.Empty(t, MatchDigests(entries, "library/ubuntu"))
}

func TestMatchDigestsSuffixSemantics(t *testing.T) {
    // Le test est un suffixe strict: un repository dont le nom se termine
    // par le nom cible matche aussi. Comportement préservé tel quel.
    entries := []string{"baz/foo/bar@sha256:abc111"}
    assert.Equal(t, []string{"sha256:abc111"}, MatchDigests(entries, "foo/bar"))
}

func TestMatchDigestsDeduplicates(t *testing.T) {
    entries := []string{
        "ubuntu@sha256:abc111",
        "docker.io/ubuntu@sha256:abc111",
    }
    assert.Equal(t, []string{"sha256:abc111"}, MatchDigests(entries, "library/ubuntu"))
}

func TestMatchDigestsEmpty(t *testing.T) {
    assert.Empty(t, MatchDigests(nil, "library/ubuntu"))
    assert.Empty(t, MatchDigests([]string{}, "library/ubuntu"))
}
