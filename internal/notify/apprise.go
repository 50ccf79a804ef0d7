// internal/notify/apprise.go
package notify

import (
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/sirupsen/logrus"
)

// AppriseClient envoie des notifications via un endpoint Apprise
type AppriseClient struct {
    url        string
    httpClient *http.Client
    logger     *logrus.Logger
}

// Types de notification
const (
    NotificationInfo    = "info"
    NotificationSuccess = "success"
    NotificationError   = "error"
)

type Notification struct {
    Title string   `json:"title"`
    Body  string   `json:"body"`
    Type  string   `json:"type"`
    Tags  []string `json:"tags,omitempty"`
}

func NewAppriseClient(appriseURL string, logger *logrus.Logger) (*AppriseClient, error) {
    if logger == nil {
        logger = logrus.New()
    }

    // Convertir apprise:// en http:// si nécessaire
    url := appriseURL
    if strings.HasPrefix(url, "apprise://") {
        url = "http://" + strings.TrimPrefix(url, "apprise://")
        logger.Debugf("Converted Apprise URL from %s to %s", appriseURL, url)
    }

    return &AppriseClient{
        url: url,
        httpClient: &http.Client{
            Timeout: 10 * time.Second,
        },
        logger: logger,
    }, nil
}

// SendNotification envoie une notification typée
func (a *AppriseClient) SendNotification(title, message, nType string, tags []string) error {
    notification := Notification{
        Title: title,
        Body:  message,
        Type:  nType,
        Tags:  tags,
    }

    jsonData, err := json.Marshal(notification)
    if err != nil {
        return fmt.Errorf("failed to marshal notification: %w", err)
    }

    resp, err := a.httpClient.Post(a.url, "application/json", bytes.NewBuffer(jsonData))
    if err != nil {
        return fmt.Errorf("failed to send notification: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("notification failed with status %d: %s", resp.StatusCode, string(body))
    }

    return nil
}

// NotifyVersionChange signale qu'une référence surveillée a changé de version
func (a *AppriseClient) NotifyVersionChange(input, oldVersion, newVersion string) error {
    msg := fmt.Sprintf("Resolved version changed for %s:\nPrevious: %s\nCurrent: %s",
        input, oldVersion, newVersion)

    return a.SendNotification(
        "Image Version Changed",
        msg,
        NotificationInfo,
        []string{"info", "version-change"},
    )
}

// NotifyResolveError signale l'échec d'une résolution programmée
func (a *AppriseClient) NotifyResolveError(input string, err error) error {
    msg := fmt.Sprintf("Failed to resolve %s:\n%v", input, err)

    return a.SendNotification(
        "Image Resolution Failed",
        msg,
        NotificationError,
        []string{"error", "resolve"},
    )
}

func (a *AppriseClient) Close() error {
    // Pas besoin de close pour le client HTTP
    return nil
}
