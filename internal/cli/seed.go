package cli

import (
	"context"
	"log"

	"github.com/aman-churiwal/tutor-gateway/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load lessons, quizzes, quests and achievements from YAML",
	Long: `Load seed content into an empty database. Without a file argument the
configured seed path is used, falling back to the built-in content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.Seed.Path
		if len(args) == 1 {
			path = args[0]
		}

		stores, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer stores.close()

		if err := stores.migrate(); err != nil {
			return err
		}

		return seedStore(cmd.Context(), stores.store, path)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seedStore(ctx context.Context, store seed.Store, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := seed.Load(path)
	if err != nil {
		return err
	}

	result, err := seed.Apply(ctx, store, doc)
	if err != nil {
		return err
	}

	if result.Skipped {
		log.Println("Seed skipped, lessons already present")
		return nil
	}

	log.Printf("Seeded %d lessons, %d quizzes, %d quests, %d achievements",
		result.Lessons, result.Quizzes, result.Quests, result.Achievements)
	return nil
}
