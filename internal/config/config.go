// internal/config/config.go
package config

import (
    "fmt"
    "os"
    "strconv"
    "time"

    "github.com/sirupsen/logrus"

    "revlookup/internal/types/options"
)

const (
    // Defaults
    DefaultLogLevel  = "error"
    DefaultDbPath    = "revlookup.db"
    DefaultEngine    = "cli"
    DefaultSortBy    = "date"
    DefaultRetention = 100

    // Environment variables
    EnvPrefix     = "REVLOOKUP_"
    EnvLogLevel   = EnvPrefix + "LOG_LEVEL"
    EnvDbPath     = EnvPrefix + "DB"
    EnvAppriseURL = EnvPrefix + "APPRISE_URL"
    EnvEngine     = EnvPrefix + "ENGINE"
    EnvTimeout    = EnvPrefix + "TIMEOUT"
    EnvMaxPages   = EnvPrefix + "MAX_PAGES"
)

// Config représente la configuration globale de l'application
type Config struct {
    // Paramètres généraux
    LogLevel   string
    DbPath     string
    AppriseURL string
    Engine     string // Backend d'inspection: cli ou api

    // Paramètres de recherche
    ScanAll  bool // Scanner toutes les pages
    MaxPages int  // Limite de pages Hub
    JSON     bool // Sortie JSON

    // Paramètres historique
    Limit  int
    Last   bool
    SortBy string
    Search string
    Since  string
    Before string

    // Paramètres système
    Retention int // Nombre d'entrées d'historique à conserver par référence
    Timeout   int // Timeout HTTP par appel en secondes

    // Logger configuré
    Logger *logrus.Logger
}

// NewConfig crée une nouvelle configuration avec les valeurs par défaut
func NewConfig() *Config {
    return &Config{
        LogLevel:  DefaultLogLevel,
        DbPath:    DefaultDbPath,
        Engine:    DefaultEngine,
        MaxPages:  options.DefaultMaxPages,
        SortBy:    DefaultSortBy,
        Retention: DefaultRetention,
        Timeout:   int(options.DefaultHTTPTimeout / time.Second),
        Logger:    newLogger(DefaultLogLevel),
    }
}

// LoadFromEnv charge la configuration depuis les variables d'environnement
func (c *Config) LoadFromEnv() error {
    // Log level
    if level := os.Getenv(EnvLogLevel); level != "" {
        if err := c.SetLogLevel(level); err != nil {
            return fmt.Errorf("invalid log level: %w", err)
        }
    }

    // Database path
    if path := os.Getenv(EnvDbPath); path != "" {
        c.DbPath = path
    }

    // Apprise URL
    if url := os.Getenv(EnvAppriseURL); url != "" {
        c.AppriseURL = url
    }

    // Engine
    if engine := os.Getenv(EnvEngine); engine != "" {
        c.Engine = engine
    }

    // Timeout
    if timeout := os.Getenv(EnvTimeout); timeout != "" {
        t, err := strconv.Atoi(timeout)
        if err != nil {
            return fmt.Errorf("invalid timeout value: %w", err)
        }
        c.Timeout = t
    }

    // Max pages
    if pages := os.Getenv(EnvMaxPages); pages != "" {
        p, err := strconv.Atoi(pages)
        if err != nil {
            return fmt.Errorf("invalid max pages value: %w", err)
        }
        c.MaxPages = p
    }

    return nil
}

// Validate vérifie la validité de la configuration
func (c *Config) Validate() error {
    if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
        return fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
    }

    if c.DbPath == "" {
        return fmt.Errorf("database path cannot be empty")
    }

    if c.Engine != "cli" && c.Engine != "api" {
        return fmt.Errorf("invalid engine '%s': must be 'cli' or 'api'", c.Engine)
    }

    if c.MaxPages < 1 {
        return fmt.Errorf("max pages must be at least 1")
    }

    if c.Timeout < 1 {
        return fmt.Errorf("timeout must be at least 1 second")
    }

    if c.Retention < 1 {
        return fmt.Errorf("retention must be at least 1")
    }

    // Vérifier les dates si spécifiées
    if c.Since != "" {
        if _, err := time.Parse("2006-01-02", c.Since); err != nil {
            return fmt.Errorf("invalid since date format (use YYYY-MM-DD): %w", err)
        }
    }
    if c.Before != "" {
        if _, err := time.Parse("2006-01-02", c.Before); err != nil {
            return fmt.Errorf("invalid before date format (use YYYY-MM-DD): %w", err)
        }
    }

    if c.SortBy != "date" && c.SortBy != "input" {
        return fmt.Errorf("invalid sort criteria: must be 'date' or 'input'")
    }

    return nil
}

// SetLogLevel configure le niveau de log
func (c *Config) SetLogLevel(level string) error {
    lvl, err := logrus.ParseLevel(level)
    if err != nil {
        return err
    }
    c.LogLevel = level
    c.Logger.SetLevel(lvl)
    return nil
}

// HTTPTimeout retourne le timeout HTTP sous forme de durée
func (c *Config) HTTPTimeout() time.Duration {
    return time.Duration(c.Timeout) * time.Second
}

// newLogger crée un nouveau logger configuré
func newLogger(level string) *logrus.Logger {
    logger := logrus.New()

    logger.SetOutput(os.Stderr)
    logger.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: "15:04:05",
    })

    if lvl, err := logrus.ParseLevel(level); err == nil {
        logger.SetLevel(lvl)
    } else {
        logger.SetLevel(logrus.ErrorLevel)
    }

    return logger
}
