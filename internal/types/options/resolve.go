// internal/types/options/resolve.go

package options

// ResolveOptions définit les options pour la résolution d'une référence
type ResolveOptions struct {
    ScanAll   bool // Scanner toutes les pages au lieu de stopper au premier match
    MaxPages  int  // Limite dure sur le nombre de pages parcourues
    NoHistory bool // Ne pas enregistrer le résultat dans l'historique
}

// NewResolveOptions crée des ResolveOptions avec des valeurs par défaut
func NewResolveOptions(opts ...ResolveOption) ResolveOptions {
    options := ResolveOptions{
        ScanAll:  false,
        MaxPages: DefaultMaxPages,
    }
    for _, opt := range opts {
        opt(&options)
    }
    return options
}

type ResolveOption func(*ResolveOptions)

func WithScanAll(scanAll bool) ResolveOption {
    return func(o *ResolveOptions) {
        o.ScanAll = scanAll
    }
}

func WithMaxPages(maxPages int) ResolveOption {
    return func(o *ResolveOptions) {
        o.MaxPages = maxPages
    }
}

func WithNoHistory(noHistory bool) ResolveOption {
    return func(o *ResolveOptions) {
        o.NoHistory = noHistory
    }
}
