// internal/types/options/history.go

package options

import "time"

// HistoryOptions définit les filtres pour la consultation de l'historique
type HistoryOptions struct {
    Input   []string  // Références à inclure (vide = toutes)
    Limit   int       // Limite d'entrées
    Last    bool      // Dernière entrée par référence seulement
    SortBy  string    // Critère de tri (date|input)
    JSON    bool      // Format JSON
    Search  string    // Terme de recherche
    Since   time.Time // Date début
    Before  time.Time // Date fin
}
