// cmd/revlookup/main.go
package main

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "revlookup/internal/config"
    "revlookup/internal/resolver"
    "revlookup/internal/scheduler"
    "revlookup/internal/types"
    "revlookup/internal/types/options"
    "revlookup/pkg/utils"
)

// Codes de sortie du processus
const (
    exitOK       = 0
    exitError    = 1
    exitUsage    = 2
    exitNoDocker = 127
)

func main() {
    cfg := config.NewConfig()
    var verbose bool

    // Commande racine
    rootCmd := &cobra.Command{
        Use:   "revlookup",
        Short: "Map local image digests back to Docker Hub tags",
        Long: `Resolve which Docker Hub version of an image is present locally.

Reads the image's recorded repo digests via docker inspect, then pages
through the Docker Hub tag listing until tags pointing at one of the local
digests are found.

Environment variables:
  REVLOOKUP_LOG_LEVEL  : Logging level (debug, info, warn, error)
  REVLOOKUP_DB         : History database path
  REVLOOKUP_APPRISE_URL: Apprise URL for watch notifications
  REVLOOKUP_ENGINE     : Inspection backend (cli, api)
  REVLOOKUP_TIMEOUT    : HTTP timeout per call in seconds
  REVLOOKUP_MAX_PAGES  : Maximum tag pages to fetch`,
        SilenceUsage: true,
        PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
            // Charger la configuration depuis l'environnement
            if err := cfg.LoadFromEnv(); err != nil {
                return err
            }

            // Appliquer le niveau venant du flag --log-level
            if err := cfg.SetLogLevel(cfg.LogLevel); err != nil {
                return err
            }

            // -v prime sur le niveau configuré
            if verbose {
                if err := cfg.SetLogLevel("debug"); err != nil {
                    return err
                }
            }

            return cfg.Validate()
        },
        RunE: func(cmd *cobra.Command, args []string) error {
            // Sans argument: aide + exemples, code de sortie usage
            printHelpAndExamples(cmd)
            os.Exit(exitUsage)
            return nil
        },
    }

    // Flags globaux
    rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
        "Enable debug logging")
    rootCmd.PersistentFlags().StringVarP(&cfg.LogLevel, "log-level", "l",
        config.DefaultLogLevel, "Log level")
    rootCmd.PersistentFlags().StringVarP(&cfg.DbPath, "db", "D",
        config.DefaultDbPath, "History database path")
    rootCmd.PersistentFlags().StringVarP(&cfg.AppriseURL, "apprise-url", "a",
        "", "Apprise URL for notifications")
    rootCmd.PersistentFlags().StringVarP(&cfg.Engine, "engine", "e",
        config.DefaultEngine, "Inspection backend (cli|api)")
    rootCmd.PersistentFlags().IntVar(&cfg.Timeout, "timeout",
        cfg.Timeout, "HTTP timeout per call in seconds")
    rootCmd.PersistentFlags().IntVar(&cfg.Retention, "retention",
        config.DefaultRetention, "History entries to retain per reference")

    // Ajouter les sous-commandes
    rootCmd.AddCommand(
        newResolveCmd(cfg),
        newHistoryCmd(cfg),
        newWatchCmd(cfg),
    )

    // Exécuter la commande
    if err := rootCmd.Execute(); err != nil {
        os.Exit(exitCode(err, cfg))
    }
}

// exitCode traduit une erreur en code de sortie et imprime le diagnostic
func exitCode(err error, cfg *config.Config) int {
    switch {
    case errors.Is(err, types.ErrDockerNotFound):
        fmt.Fprintln(os.Stderr, "Error: 'docker' CLI not found. Please install Docker or check PATH.")
        return exitNoDocker

    case strings.Contains(err.Error(), "Cannot connect to the Docker daemon"):
        fmt.Fprintln(os.Stderr, "Error: Docker daemon not reachable. Please start Docker.\n"+
            "Note: the container does NOT have to be running, but the daemon must be up.")
        return exitError

    default:
        var inspectErr *types.InspectError
        if errors.As(err, &inspectErr) {
            fmt.Fprintf(os.Stderr, "Error: %v\n", inspectErr)
            return exitError
        }
        if cfg.Logger.IsLevelEnabled(logrus.DebugLevel) {
            cfg.Logger.Errorf("Unexpected error: %+v", err)
        }
        fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)
        return exitError
    }
}

// newResolveCmd crée la commande resolve
func newResolveCmd(cfg *config.Config) *cobra.Command {
    var noHistory bool

    cmd := &cobra.Command{
        Use:   "resolve repository[:tag]",
        Short: "Resolve which Hub tags match the local image",
        Long: `Resolve the local repo digest(s) of an image via docker inspect and map
them to the tags published on Docker Hub.

Examples:
  # Fast: stops at the first matching tag
  revlookup resolve ollama/ollama:latest

  # Exhaustive: scans all tag pages and collects every matching tag
  revlookup resolve ollama/ollama:latest --scan-all

  # Debug logs + page limit
  revlookup resolve ollama/ollama:latest -v --scan-all --max-pages 5

  # JSON output
  revlookup resolve ubuntu --json`,
        Args: cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            r, err := resolver.NewResolver(cfg)
            if err != nil {
                return err
            }
            defer r.Close()

            opts := options.NewResolveOptions(
                options.WithScanAll(cfg.ScanAll),
                options.WithMaxPages(cfg.MaxPages),
                options.WithNoHistory(noHistory),
            )

            result, err := r.Resolve(context.Background(), args[0], opts)
            if err != nil {
                return err
            }

            if cfg.JSON {
                fmt.Println(utils.PrettyJSON(result))
                return nil
            }

            printResult(result)
            return nil
        },
    }

    cmd.Flags().BoolVarP(&cfg.JSON, "json", "j", false,
        "Output in JSON format")
    cmd.Flags().BoolVar(&cfg.ScanAll, "scan-all", false,
        "Scan all tag pages (slower). Default: stop at first match")
    cmd.Flags().IntVar(&cfg.MaxPages, "max-pages", options.DefaultMaxPages,
        "Maximum number of tag pages to fetch")
    cmd.Flags().BoolVar(&noHistory, "no-history", false,
        "Do not record the result in the history database")

    return cmd
}

// printResult affiche le rapport humain d'une résolution
func printResult(result *types.ResolveResult) {
    fmt.Printf("Image: %s\n", result.Input)
    fmt.Printf("Repository: %s\n", result.Repository)

    if !result.MappingPossible {
        if result.LocalID != "" {
            fmt.Printf("Local .Id: %s\n", result.LocalID)
        }
        fmt.Println(result.Note)
        return
    }

    fmt.Println("Local repo digest(s):")
    for _, d := range result.LocalRepoDigests {
        fmt.Printf("  - %s\n", d)
    }

    fmt.Println("Matching tags on Docker Hub:")
    for _, t := range result.Tags.Versions {
        fmt.Printf("  - %s:%s\n", result.Repository, t)
    }
    for _, t := range result.Tags.Latest {
        fmt.Printf("  - %s:%s\n", result.Repository, t)
    }
    for _, t := range result.Tags.Others {
        fmt.Printf("  - %s:%s\n", result.Repository, t)
    }

    if result.BestGuess != "" {
        fmt.Printf("\n=> Most likely version: %s\n", result.BestGuess)
    }
}

// newHistoryCmd crée la commande history
func newHistoryCmd(cfg *config.Config) *cobra.Command {
    var jsonOut bool

    cmd := &cobra.Command{
        Use:   "history [reference...]",
        Short: "Show past resolutions",
        Long: `Show the recorded history of past resolutions.
If no references are specified, shows history for all references.

Examples:
  # Show history for everything
  revlookup history

  # Show history for one reference
  revlookup history ollama/ollama:latest

  # Show last 5 entries
  revlookup history -n 5

  # Show only the last entry per reference
  revlookup history -L

  # Show as JSON
  revlookup history -j`,
        RunE: func(cmd *cobra.Command, args []string) error {
            r, err := resolver.NewResolver(cfg)
            if err != nil {
                return err
            }
            defer r.Close()

            opts := options.HistoryOptions{
                Input:  args,
                Limit:  cfg.Limit,
                Last:   cfg.Last,
                SortBy: cfg.SortBy,
                JSON:   jsonOut,
                Search: cfg.Search,
            }

            if cfg.Since != "" {
                if t, err := time.Parse("2006-01-02", cfg.Since); err == nil {
                    opts.Since = t
                } else {
                    return fmt.Errorf("invalid --since date format (use YYYY-MM-DD)")
                }
            }

            if cfg.Before != "" {
                if t, err := time.Parse("2006-01-02", cfg.Before); err == nil {
                    opts.Before = t
                } else {
                    return fmt.Errorf("invalid --before date format (use YYYY-MM-DD)")
                }
            }

            history, err := r.GetHistory(opts)
            if err != nil {
                return err
            }

            if len(history) == 0 {
                cfg.Logger.Info("No history found")
                return nil
            }

            if jsonOut {
                if err := json.NewEncoder(os.Stdout).Encode(history); err != nil {
                    return fmt.Errorf("failed to encode JSON: %v", err)
                }
                return nil
            }

            // Affichage formaté
            for _, entry := range history {
                fmt.Printf("[%s] %s (ID: %d)\n",
                    entry.CreatedAt.Format("2006-01-02 15:04:05"),
                    entry.Input,
                    entry.ID,
                )
                if entry.MappingPossible {
                    fmt.Printf("  Version: %s\n", entry.BestGuess)
                    if entry.Tags != "" {
                        fmt.Printf("  Tags: %s\n", entry.Tags)
                    }
                } else {
                    fmt.Println("  No mapping possible")
                    if entry.LocalID != "" {
                        fmt.Printf("  Local .Id: %s\n", utils.ShortenID(strings.TrimPrefix(entry.LocalID, "sha256:")))
                    }
                }
                fmt.Println()
            }

            return nil
        },
    }

    cmd.Flags().IntVarP(&cfg.Limit, "limit", "n", 0,
        "Limit number of entries")
    cmd.Flags().BoolVarP(&cfg.Last, "last", "L", false,
        "Show only last entry per reference")
    cmd.Flags().StringVarP(&cfg.SortBy, "sort-by", "s", "date",
        "Sort by (date|input)")
    cmd.Flags().BoolVarP(&jsonOut, "json", "j", false,
        "Output in JSON format")
    cmd.Flags().StringVarP(&cfg.Search, "search", "q", "",
        "Search in repositories, versions and tags")
    cmd.Flags().StringVarP(&cfg.Since, "since", "S", "",
        "Show entries since date (YYYY-MM-DD)")
    cmd.Flags().StringVarP(&cfg.Before, "before", "b", "",
        "Show entries before date (YYYY-MM-DD)")

    return cmd
}

// newWatchCmd crée la commande watch
func newWatchCmd(cfg *config.Config) *cobra.Command {
    cmd := &cobra.Command{
        Use:   `watch "cron-expression" reference [reference...]`,
        Short: "Periodically re-resolve references",
        Long: `Re-resolve references on a cron schedule and report when the resolved
version changes. Sends an Apprise notification if configured.

Cron Expression Format:
  ┌───────────── minute (0 - 59)
  │ ┌───────────── hour (0 - 23)
  │ │ ┌───────────── day of month (1 - 31)
  │ │ │ ┌───────────── month (1 - 12)
  │ │ │ │ ┌───────────── day of week (0 - 6)
  │ │ │ │ │
  * * * * *

Examples:
  # Check every day at 06:00
  revlookup watch "0 6 * * *" ollama/ollama:latest

  # Watch several references hourly, with notifications
  revlookup -a http://apprise:8000/notify watch "0 * * * *" ubuntu nginx`,
        Args: cobra.MinimumNArgs(2),
        RunE: func(cmd *cobra.Command, args []string) error {
            r, err := resolver.NewResolver(cfg)
            if err != nil {
                return err
            }
            defer r.Close()

            cronExpr := args[0]
            refs := args[1:]

            s := scheduler.NewScheduler(r, scheduler.Options{
                Refs: refs,
                ResolveOpts: options.NewResolveOptions(
                    options.WithScanAll(cfg.ScanAll),
                    options.WithMaxPages(cfg.MaxPages),
                ),
                Logger: cfg.Logger,
            })

            if err := s.Start(cronExpr); err != nil {
                return err
            }

            next := s.NextRun()
            if next != nil {
                cfg.Logger.Infof("First resolution scheduled at: %s",
                    next.Format("2006-01-02 15:04:05"))
            }

            // Attendre jusqu'à Ctrl+C
            s.Wait()
            return nil
        },
    }

    cmd.Flags().BoolVar(&cfg.ScanAll, "scan-all", false,
        "Scan all tag pages on each run")
    cmd.Flags().IntVar(&cfg.MaxPages, "max-pages", options.DefaultMaxPages,
        "Maximum number of tag pages to fetch per run")

    return cmd
}

// printHelpAndExamples affiche l'aide complète avec des exemples d'appel
func printHelpAndExamples(cmd *cobra.Command) {
    cmd.Help()
    fmt.Println(`
Example calls:
  # Fast: stops at the first matching tag
  revlookup resolve ollama/ollama:latest

  # Exhaustive: scans all tag pages and collects every matching tag
  revlookup resolve ollama/ollama:latest --scan-all

  # Debug logs + page limit
  revlookup resolve ollama/ollama:latest -v --scan-all --max-pages 5

Typical output for 'ollama/ollama:latest':
  Image: ollama/ollama:latest
  Repository: ollama/ollama
  Local repo digest(s):
    - sha256:24d41d792306fc3221de215bb6f225faf981712d1f38083d8c61301dfa2b69b3
  Matching tags on Docker Hub:
    - ollama/ollama:0.11.11

  => Most likely version: 0.11.11

Notes:
  * The container does NOT have to be running, but the Docker daemon must be up.
  * If '.RepoDigests' is empty (e.g. locally built image), no reliable tag
    mapping is possible.`)
}
