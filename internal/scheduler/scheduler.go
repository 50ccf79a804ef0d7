// internal/scheduler/scheduler.go
package scheduler

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "sync"
    "syscall"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/sirupsen/logrus"

    "revlookup/internal/resolver"
    "revlookup/internal/types/options"
)

// Scheduler ré-exécute périodiquement des résolutions et signale les
// changements de version
type Scheduler struct {
    resolver    *resolver.Resolver
    cron        *cron.Cron
    refs        []string
    resolveOpts options.ResolveOptions
    logger      *logrus.Logger
    stopChan    chan struct{}
    stopOnce    sync.Once
    wg          sync.WaitGroup
}

// Options pour la configuration du scheduler
type Options struct {
    Refs        []string
    ResolveOpts options.ResolveOptions
    Logger      *logrus.Logger
}

// NewScheduler crée une nouvelle instance du scheduler
func NewScheduler(r *resolver.Resolver, opts Options) *Scheduler {
    if opts.Logger == nil {
        opts.Logger = logrus.New()
        opts.Logger.SetLevel(logrus.InfoLevel)
    }

    return &Scheduler{
        resolver: r,
        cron: cron.New(cron.WithParser(cron.NewParser(
            cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
        ))),
        refs:        opts.Refs,
        resolveOpts: opts.ResolveOpts,
        logger:      opts.Logger,
        stopChan:    make(chan struct{}),
    }
}

// Start démarre le scheduler avec l'expression cron donnée
func (s *Scheduler) Start(cronExpr string) error {
    // Valider l'expression cron
    if _, err := s.cron.AddFunc(cronExpr, s.runScheduledResolve); err != nil {
        return fmt.Errorf("invalid cron expression: %w", err)
    }

    s.logger.Infof("Starting scheduler with cron expression: %s", cronExpr)

    // Démarrer le cron
    s.cron.Start()

    // Gérer les signaux d'arrêt
    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    s.wg.Add(1)
    go func() {
        defer s.wg.Done()
        select {
        case sig := <-sigChan:
            s.logger.Infof("Received signal %v, stopping scheduler...", sig)
            s.Stop()
        case <-s.stopChan:
            return
        }
    }()

    return nil
}

// runScheduledResolve exécute la résolution programmée
func (s *Scheduler) runScheduledResolve() {
    ctx := context.Background()

    var resolved, unmatched, changed, failed int

    for _, ref := range s.refs {
        // Lire la dernière version connue avant de résoudre
        previous := ""
        if entry, err := s.resolver.LastResolution(ref); err == nil && entry != nil {
            previous = entry.BestGuess
        }

        result, err := s.resolver.Resolve(ctx, ref, s.resolveOpts)
        if err != nil {
            failed++
            s.logger.Errorf("✗ %s: %v", ref, err)
            if n := s.resolver.Notifier(); n != nil {
                if nerr := n.NotifyResolveError(ref, err); nerr != nil {
                    s.logger.Warnf("Failed to send notification: %v", nerr)
                }
            }
            continue
        }

        if !result.MappingPossible {
            unmatched++
            s.logger.Infof("- %s: no mapping possible", ref)
            continue
        }

        resolved++
        s.logger.Infof("✓ %s: resolved to %s", ref, result.BestGuess)

        if previous != "" && result.BestGuess != "" && previous != result.BestGuess {
            changed++
            s.logger.Infof("! %s: version changed %s -> %s", ref, previous, result.BestGuess)
            if n := s.resolver.Notifier(); n != nil {
                if nerr := n.NotifyVersionChange(ref, previous, result.BestGuess); nerr != nil {
                    s.logger.Warnf("Failed to send notification: %v", nerr)
                }
            }
        }
    }

    s.logger.Infof("Summary: %d resolved (%d changed), %d unmatched, %d failed",
        resolved, changed, unmatched, failed)
}

// Stop arrête le scheduler. Les jobs en cours se terminent avant le retour.
func (s *Scheduler) Stop() {
    s.stopOnce.Do(func() {
        s.logger.Info("Stopping scheduler...")

        // Arrêter le cron et attendre la fin des jobs en cours
        ctx := s.cron.Stop()
        <-ctx.Done()

        // Signaler l'arrêt
        close(s.stopChan)

        s.logger.Info("Scheduler stopped")
    })
}

// Wait bloque jusqu'à l'arrêt du scheduler
func (s *Scheduler) Wait() {
    <-s.stopChan
    s.wg.Wait()
}

// NextRun retourne la prochaine exécution prévue
func (s *Scheduler) NextRun() *time.Time {
    entries := s.cron.Entries()
    if len(entries) == 0 {
        return nil
    }
    next := entries[0].Next
    return &next
}
