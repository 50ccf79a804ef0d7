// internal/hub/client.go
package hub

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "time"

    "github.com/sirupsen/logrus"

    "revlookup/internal/types"
    "revlookup/internal/types/options"
    "revlookup/pkg/utils"
)

const userAgent = "revlookup/1.1"

// TagPage est une page de la liste des tags retournée par Docker Hub
type TagPage struct {
    Results []TagRecord `json:"results"`
    Next    string      `json:"next"`
}

// TagRecord est un tag publié avec son digest de manifeste et, pour les
// images multi-plateformes, les digests par plateforme
type TagRecord struct {
    Name   string          `json:"name"`
    Digest string          `json:"digest"`
    Images []PlatformImage `json:"images"`
}

// PlatformImage est une déclinaison par plateforme d'un tag
type PlatformImage struct {
    Digest       string `json:"digest"`
    Architecture string `json:"architecture,omitempty"`
    OS           string `json:"os,omitempty"`
}

// Matches indique si le record pointe vers un des digests cibles,
// au niveau manifeste ou par plateforme
func (r TagRecord) Matches(targets map[string]struct{}) bool {
    if _, ok := targets[r.Digest]; ok && r.Digest != "" {
        return true
    }
    for _, img := range r.Images {
        if _, ok := targets[img.Digest]; ok && img.Digest != "" {
            return true
        }
    }
    return false
}

// Client interroge l'API de listing des tags de Docker Hub
type Client struct {
    baseURL    string
    httpClient *http.Client
    retries    int
    logger     *logrus.Logger
}

// NewClient crée un client Docker Hub
func NewClient(logger *logrus.Logger) *Client {
    return &Client{
        baseURL: "https://hub.docker.com",
        httpClient: &http.Client{
            Timeout: options.DefaultHTTPTimeout,
        },
        retries: options.DefaultHTTPRetries,
        logger:  logger,
    }
}

// NewClientWithBaseURL crée un client pointant sur un autre endpoint.
// Utilisé par les tests.
func NewClientWithBaseURL(baseURL string, logger *logrus.Logger) *Client {
    c := NewClient(logger)
    c.baseURL = baseURL
    return c
}

// TagsURL construit l'URL de la première page du listing des tags
func (c *Client) TagsURL(repo string) string {
    return fmt.Sprintf("%s/v2/repositories/%s/tags/?page_size=%d",
        c.baseURL, url.QueryEscape(repo), options.DefaultPageSize)
}

// FetchPage récupère une page du listing avec retry et backoff exponentiel.
// L'épuisement des retries retourne une FetchError nommant l'URL et la
// dernière cause.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*TagPage, error) {
    var page *TagPage

    err := utils.Retry(ctx, func() error {
        p, err := c.fetchOnce(ctx, pageURL)
        if err != nil {
            return err
        }
        page = p
        return nil
    }, utils.RetryOptions{
        MaxAttempts: c.retries + 1,
        Delay:       options.DefaultRetryDelay,
        Backoff:     options.DefaultRetryBackoff,
        MaxDelay:    options.DefaultMaxRetryWait,
        OnRetry: func(attempt int, err error) {
            c.logger.Debugf("GET %s failed (try %d/%d): %v",
                pageURL, attempt, c.retries+1, err)
        },
    })
    if err != nil {
        return nil, &types.FetchError{URL: pageURL, Cause: err}
    }

    return page, nil
}

// fetchOnce effectue une tentative unique
func (c *Client) fetchOnce(ctx context.Context, pageURL string) (*TagPage, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
    if err != nil {
        return nil, fmt.Errorf("failed to build request: %w", err)
    }
    req.Header.Set("User-Agent", userAgent)

    c.logger.Debugf("GET %s", pageURL)

    resp, err := c.httpClient.Do(req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
    }

    var page TagPage
    if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
        return nil, fmt.Errorf("failed to decode tag page: %w", err)
    }

    return &page, nil
}

// CollectTags parcourt le listing page par page et retourne les noms des
// tags dont un digest appartient à targets.
//
// Sans ScanAll, la recherche retourne dès le premier record correspondant.
// Une URL déjà visitée interrompt la boucle (garde anti-cycle), et le
// dépassement de MaxPages termine la recherche avec un warning; dans les
// deux cas les résultats accumulés sont retournés.
func (c *Client) CollectTags(ctx context.Context, repo string, targets map[string]struct{}, opts options.ResolveOptions) (map[string]struct{}, error) {
    hits := make(map[string]struct{})
    visited := make(map[string]struct{})

    pageURL := c.TagsURL(repo)
    page := 0

    for pageURL != "" {
        if _, seen := visited[pageURL]; seen {
            c.logger.Errorf("Pagination loop detected on tag listing, aborting at %s", pageURL)
            break
        }
        visited[pageURL] = struct{}{}

        page++
        if page > opts.MaxPages {
            c.logger.Warnf("Reached max-pages=%d, stopping search", opts.MaxPages)
            break
        }

        data, err := c.FetchPage(ctx, pageURL)
        if err != nil {
            return hits, err
        }

        pageHits := 0
        for _, record := range data.Results {
            if !record.Matches(targets) {
                continue
            }
            hits[record.Name] = struct{}{}
            pageHits++

            if !opts.ScanAll {
                c.logger.Debugf("First hit %q on page %d, stopping search (scan-all disabled)",
                    record.Name, page)
                return hits, nil
            }
        }

        c.logger.Debugf("Hub page %d: %d hit(s)", page, pageHits)
        pageURL = data.Next
    }

    return hits, nil
}

// SetTimeout ajuste le timeout HTTP par appel
func (c *Client) SetTimeout(d time.Duration) {
    c.httpClient.Timeout = d
}
