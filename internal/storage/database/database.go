// internal/storage/database/database.go
package database

import (
    "database/sql"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    _ "github.com/mattn/go-sqlite3"
    "github.com/sirupsen/logrus"

    "revlookup/internal/types"
    "revlookup/internal/types/options"
    "revlookup/pkg/utils"
)

// Database conserve l'historique des résolutions. Journal en append
// seulement: jamais consulté pour répondre à une résolution.
type Database struct {
    db     *sql.DB
    logger *logrus.Logger
}

// NewDatabase initialise une nouvelle instance de base de données
func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
    // Créer le répertoire si nécessaire
    if dir := filepath.Dir(dbPath); dir != "." {
        if err := os.MkdirAll(dir, 0755); err != nil {
            return nil, fmt.Errorf("failed to create database directory: %w", err)
        }
    }

    db, err := sql.Open("sqlite3", dbPath)
    if err != nil {
        return nil, fmt.Errorf("failed to open database: %w", err)
    }

    if err := initSchema(db); err != nil {
        db.Close()
        return nil, err
    }

    return &Database{
        db:     db,
        logger: logger,
    }, nil
}

// Close ferme la connexion à la base de données
func (d *Database) Close() error {
    return d.db.Close()
}

// initSchema initialise le schéma de la base de données
func initSchema(db *sql.DB) error {
    _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS resolutions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            input TEXT NOT NULL,
            repository TEXT NOT NULL,
            local_id TEXT,
            best_guess TEXT,
            mapping_possible INTEGER NOT NULL DEFAULT 0,
            tags TEXT,
            created_at TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
        );
        CREATE INDEX IF NOT EXISTS idx_input ON resolutions(input);
        CREATE INDEX IF NOT EXISTS idx_created_at ON resolutions(created_at);
    `)
    if err != nil {
        return fmt.Errorf("failed to create schema: %w", err)
    }
    return nil
}

// SaveResolution enregistre le résultat d'une résolution
func (d *Database) SaveResolution(result *types.ResolveResult) (int64, error) {
    var tags string
    if result.Tags != nil {
        tags = strings.Join(result.AllTags, ",")
    }

    res, err := d.db.Exec(`
        INSERT INTO resolutions (
            input, repository, local_id, best_guess, mapping_possible, tags, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
        result.Input,
        result.Repository,
        result.LocalID,
        result.BestGuess,
        result.MappingPossible,
        tags,
        time.Now().UTC().Format(time.RFC3339),
    )
    if err != nil {
        return 0, fmt.Errorf("failed to save resolution: %w", err)
    }

    id, err := res.LastInsertId()
    if err != nil {
        return 0, fmt.Errorf("failed to get last insert ID: %w", err)
    }

    d.logger.Debugf("Saved resolution %d for %s", id, result.Input)
    return id, nil
}

// LastResolution retourne la dernière entrée pour une référence donnée
func (d *Database) LastResolution(input string) (*types.ResolutionEntry, error) {
    row := d.db.QueryRow(`
        SELECT id, input, repository, local_id, best_guess, mapping_possible, tags, created_at
        FROM resolutions WHERE input = ?
        ORDER BY created_at DESC, id DESC LIMIT 1`,
        input,
    )

    entry, err := scanEntry(row.Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("failed to query last resolution: %w", err)
    }
    return entry, nil
}

// GetHistory récupère l'historique des résolutions
func (d *Database) GetHistory(opts options.HistoryOptions) ([]types.ResolutionEntry, error) {
    var conditions []string
    var args []interface{}

    query := `SELECT id, input, repository, local_id, best_guess,
              mapping_possible, tags, created_at
              FROM resolutions`

    // Appliquer les filtres
    if len(opts.Input) > 0 {
        placeholders := make([]string, len(opts.Input))
        for i, name := range opts.Input {
            placeholders[i] = "?"
            args = append(args, name)
        }
        conditions = append(conditions,
            fmt.Sprintf("input IN (%s)", strings.Join(placeholders, ",")))
    }

    if !opts.Since.IsZero() {
        conditions = append(conditions, "created_at >= ?")
        args = append(args, opts.Since.Format("2006-01-02 15:04:05"))
    }

    if !opts.Before.IsZero() {
        conditions = append(conditions, "created_at <= ?")
        args = append(args, opts.Before.Format("2006-01-02 15:04:05"))
    }

    if opts.Search != "" {
        conditions = append(conditions, "(repository LIKE ? OR best_guess LIKE ? OR tags LIKE ?)")
        searchTerm := "%" + opts.Search + "%"
        args = append(args, searchTerm, searchTerm, searchTerm)
    }

    if len(conditions) > 0 {
        query += " WHERE " + strings.Join(conditions, " AND ")
    }

    // Tri
    query += " ORDER BY " + func() string {
        if opts.SortBy == "input" {
            return "input, created_at DESC"
        }
        return "created_at DESC"
    }()

    rows, err := d.db.Query(query, args...)
    if err != nil {
        return nil, fmt.Errorf("failed to query history: %w", err)
    }
    defer rows.Close()

    var entries []types.ResolutionEntry
    for rows.Next() {
        entry, err := scanEntry(rows.Scan)
        if err != nil {
            return nil, fmt.Errorf("failed to scan history entry: %w", err)
        }
        entries = append(entries, *entry)
    }

    // Post-processing
    if opts.Last {
        seen := make(map[string]bool)
        var filtered []types.ResolutionEntry
        for _, entry := range entries {
            if !seen[entry.Input] {
                filtered = append(filtered, entry)
                seen[entry.Input] = true
            }
        }
        entries = filtered
    }

    if opts.Limit > 0 && len(entries) > opts.Limit {
        entries = entries[:opts.Limit]
    }

    return entries, nil
}

// CleanupEntries supprime les entrées les plus anciennes d'une référence
// au-delà du seuil de rétention
func (d *Database) CleanupEntries(input string, retain int) error {
    _, err := d.db.Exec(`
        DELETE FROM resolutions
        WHERE input = ? AND id IN (
            SELECT id FROM resolutions
            WHERE input = ?
            ORDER BY created_at DESC, id DESC
            LIMIT -1 OFFSET ?
        )`,
        input, input, retain,
    )
    if err != nil {
        return fmt.Errorf("failed to cleanup old entries: %w", err)
    }
    return nil
}

// scanEntry lit une ligne de la table resolutions
func scanEntry(scan func(dest ...interface{}) error) (*types.ResolutionEntry, error) {
    var entry types.ResolutionEntry
    var localID, bestGuess, tags sql.NullString
    var createdAt string

    err := scan(
        &entry.ID,
        &entry.Input,
        &entry.Repository,
        &localID,
        &bestGuess,
        &entry.MappingPossible,
        &tags,
        &createdAt,
    )
    if err != nil {
        return nil, err
    }

    entry.LocalID = localID.String
    entry.BestGuess = bestGuess.String
    entry.Tags = tags.String

    entry.CreatedAt, err = utils.ParseTime(createdAt)
    if err != nil {
        return nil, fmt.Errorf("failed to parse created_at: %w", err)
    }

    return &entry, nil
}
