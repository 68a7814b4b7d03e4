package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"depscope/internal/complexity"
	"depscope/internal/config"
	"depscope/internal/depgraph"
	"depscope/internal/drift"
	"depscope/internal/gitdiff"
	"depscope/internal/impact"
	"depscope/internal/scanner"
	"depscope/internal/server"
	"depscope/internal/snapshot"
	"depscope/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "depscope",
		Short: "Dependency graph queries, impact analysis and drift detection",
	}
	cfgPath  string
	dbPath   string
	maxDepth int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "depscope.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the local snapshot database (overrides config)")

	queryCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Traversal depth bound (default from config)")
	impactCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Traversal depth bound (default from config)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(driftCmd)
	rootCmd.AddCommand(complexityCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	return cfg
}

func openStore(cfg *config.Config) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store
}

// loadLatest pulls the newest stored snapshot or dies with a hint to scan.
func loadLatest(ctx context.Context, store *storage.SQLiteStore) *snapshot.Snapshot {
	snap, err := store.LoadLatest(ctx)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	return snap
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(data))
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the project and store a new dependency snapshot",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)

		store := openStore(cfg)
		defer store.Close()

		sc, err := scanner.New(absRoot)
		if err != nil {
			log.Fatalf("Failed to create scanner: %v", err)
		}

		ctx := context.Background()
		start := time.Now()
		payload, err := sc.Scan(ctx)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}

		snap, err := snapshot.New(payload, snapshot.Provenance{
			ID:          uuid.NewString(),
			GeneratedAt: time.Now(),
			Trigger:     "cli-scan",
		})
		if err != nil {
			log.Fatalf("Scan produced a malformed snapshot: %v", err)
		}
		for _, w := range snap.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}
		fmt.Printf("✅ Indexed %d elements and %d edges across %d files in %v.\n",
			snap.Elements.Len(), len(snap.Graph.Edges()), len(snap.Signatures), time.Since(start))

		fmt.Println("💾 Saving to local database...")
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("🎉 Scan complete! Snapshot %s in %s\n", snap.Provenance.ID, cfg.DB.Path)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <target> <query-type>",
	Short: "Walk one relationship (calls, imports, depends-on, or their -me reverses) from an element",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout())
		defer cancel()

		snap := loadLatest(ctx, store)
		qt, err := depgraph.ParseQueryType(args[1])
		if err != nil {
			log.Fatalf("Invalid query: %v", err)
		}
		depth := maxDepth
		if depth == 0 {
			depth = cfg.Query.MaxDepth
		}

		res, err := depgraph.NewEngine(snap.Graph).Query(ctx, args[0], qt, depth)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		printJSON(res)
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Find the shortest dependency path between two elements",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout())
		defer cancel()

		snap := loadLatest(ctx, store)
		path, err := depgraph.NewEngine(snap.Graph).ShortestPath(ctx, args[0], args[1])
		if err != nil {
			log.Fatalf("Path search failed: %v", err)
		}
		if path == nil {
			fmt.Println("No path found.")
			return
		}
		printJSON(path)
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <target> [operation]",
	Short: "Assess the blast radius and risk of changing an element",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		op := impact.OperationModify
		if len(args) > 1 {
			op = impact.Operation(args[1])
			if !op.Valid() {
				log.Fatalf("Unknown operation %q (want modify, delete or refactor)", args[1])
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout())
		defer cancel()

		snap := loadLatest(ctx, store)
		depth := maxDepth
		if depth == 0 {
			depth = cfg.Query.MaxDepth
		}

		res, err := impact.NewAnalyzer(depgraph.NewEngine(snap.Graph)).Analyze(ctx, args[0], op, depth)
		if err != nil {
			log.Fatalf("Impact analysis failed: %v", err)
		}
		printJSON(res)
	},
}

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Classify stored element references against the current source tree",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		ctx := context.Background()
		snap := loadLatest(ctx, store)

		// Cheap pre-filter: when git sees no changes and signatures agree,
		// the report is all-unchanged by construction.
		if changes, err := gitdiff.Changes(cfg.Project.Root, "HEAD"); err == nil {
			fmt.Printf("📝 git reports %d changed files since HEAD.\n", len(changes))
		}

		sc, err := scanner.New(cfg.Project.Root)
		if err != nil {
			log.Fatalf("Failed to create scanner: %v", err)
		}
		payload, err := sc.Scan(ctx)
		if err != nil {
			log.Fatalf("Rescan failed: %v", err)
		}
		fresh, err := snapshot.New(payload, snapshot.Provenance{
			ID:          uuid.NewString(),
			GeneratedAt: time.Now(),
			Trigger:     "drift-check",
		})
		if err != nil {
			log.Fatalf("Rescan produced a malformed snapshot: %v", err)
		}

		changed := drift.ChangedFiles(snap.Signatures, fresh.Signatures)
		fmt.Printf("🔍 %d files differ from snapshot %s.\n", len(changed), snap.Provenance.ID)

		report := drift.NewDetector(cfg.DriftConfig()).Compare(snap.Elements, fresh.Elements)
		counts := report.Counts()
		fmt.Printf("  -> %d unchanged, %d moved, %d renamed, %d missing, %d ambiguous\n",
			counts[drift.StatusUnchanged], counts[drift.StatusMoved],
			counts[drift.StatusRenamed], counts[drift.StatusMissing],
			counts[drift.StatusAmbiguous])
		printJSON(report)
	},
}

var complexityCmd = &cobra.Command{
	Use:   "complexity [target]",
	Short: "Score elements on a size-and-parameter complexity metric",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		ctx := context.Background()
		snap := loadLatest(ctx, store)
		scorer := complexity.NewScorer(snap.Elements)

		if len(args) > 0 {
			res, err := scorer.Score(args[0])
			if err != nil {
				log.Fatalf("Scoring failed: %v", err)
			}
			printJSON(res)
			return
		}
		printJSON(scorer.ScoreAll())
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored snapshots, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		list, err := store.ListSnapshots(context.Background())
		if err != nil {
			log.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No snapshots stored yet. Run 'depscope scan' first.")
			return
		}
		for _, p := range list {
			fmt.Printf("%s  %s  %s\n", p.ID, p.GeneratedAt.Format(time.RFC3339), p.Trigger)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query tools over MCP stdio",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		s, cleanup, err := server.New(cfg)
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
		defer cleanup()

		if err := server.Serve(s); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	},
}
