// internal/resolver/resolver.go
package resolver

import (
    "fmt"
    "sync"

    "github.com/sirupsen/logrus"

    "revlookup/internal/config"
    "revlookup/internal/docker"
    "revlookup/internal/hub"
    "revlookup/internal/notify"
    "revlookup/internal/storage/database"
    "revlookup/internal/types"
    "revlookup/internal/types/options"
)

// Resolver coordonne la résolution locale et la réconciliation Hub
type Resolver struct {
    inspector docker.Inspector
    hub       *hub.Client
    db        *database.Database
    notify    *notify.AppriseClient
    config    *config.Config
    logger    *logrus.Logger
    lock      sync.Mutex
}

// NewResolver crée une nouvelle instance du resolver
func NewResolver(cfg *config.Config) (*Resolver, error) {
    logger := cfg.Logger
    if logger == nil {
        logger = logrus.New()
        logger.SetLevel(logrus.ErrorLevel)
    }

    // Initialiser le backend d'inspection
    var inspector docker.Inspector
    var err error
    switch cfg.Engine {
    case "api":
        inspector, err = docker.NewAPIInspector(logger)
        if err != nil {
            return nil, fmt.Errorf("failed to create Docker API inspector: %w", err)
        }
    default:
        inspector = docker.NewCLIInspector(logger)
    }

    // Initialiser la base de données
    db, err := database.NewDatabase(cfg.DbPath, logger)
    if err != nil {
        inspector.Close()
        return nil, fmt.Errorf("failed to initialize database: %w", err)
    }

    // Initialiser le client Hub
    hubClient := hub.NewClient(logger)
    hubClient.SetTimeout(cfg.HTTPTimeout())

    // Initialiser le client Apprise si configuré
    var notifier *notify.AppriseClient
    if cfg.AppriseURL != "" {
        notifier, err = notify.NewAppriseClient(cfg.AppriseURL, logger)
        if err != nil {
            logger.Warnf("Failed to initialize Apprise notifications: %v", err)
        }
    }

    return &Resolver{
        inspector: inspector,
        hub:       hubClient,
        db:        db,
        notify:    notifier,
        config:    cfg,
        logger:    logger,
    }, nil
}

// Close libère les ressources
func (r *Resolver) Close() error {
    var errs []error

    if err := r.inspector.Close(); err != nil {
        errs = append(errs, fmt.Errorf("failed to close inspector: %w", err))
    }
    if err := r.db.Close(); err != nil {
        errs = append(errs, fmt.Errorf("failed to close database: %w", err))
    }
    if r.notify != nil {
        if err := r.notify.Close(); err != nil {
            errs = append(errs, fmt.Errorf("failed to close Apprise client: %w", err))
        }
    }

    if len(errs) > 0 {
        return fmt.Errorf("errors closing resolver: %v", errs)
    }
    return nil
}

// Notifier retourne le client de notification, nil si non configuré
func (r *Resolver) Notifier() *notify.AppriseClient {
    return r.notify
}

// LastResolution retourne la dernière entrée d'historique pour une référence
func (r *Resolver) LastResolution(input string) (*types.ResolutionEntry, error) {
    return r.db.LastResolution(input)
}

// GetHistory récupère l'historique des résolutions
func (r *Resolver) GetHistory(opts options.HistoryOptions) ([]types.ResolutionEntry, error) {
    r.lock.Lock()
    defer r.lock.Unlock()

    return r.db.GetHistory(opts)
}
