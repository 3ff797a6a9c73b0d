package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
)

type puzzleOptions struct {
	day         string
	difficulty  string
	days        int
	showAnswers bool
	asJSON      bool
}

func newPuzzleCmd(opts *rootOptions) *cobra.Command {
	po := &puzzleOptions{}

	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Print the daily puzzle for a day and difficulty without assigning it to anyone",
		Long: "Print the daily puzzle for a day and difficulty. A puzzle already served to players is read\n" +
			"back as stored; otherwise the puzzle is generated from the current history and not saved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !models.ValidDifficulty(po.difficulty) {
				return fmt.Errorf("difficulty must be %q or %q", models.DifficultyNormal, models.DifficultyExpert)
			}
			if po.days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			ctx := logger.NewContext(cmd.Context(), log)
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			start := po.day
			if start == "" {
				start = a.game.Today()
			}
			first, err := time.Parse(models.DayLayout, start)
			if err != nil {
				return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
			}

			puzzles := make([]*models.DailyPuzzle, po.days)
			g, gctx := errgroup.WithContext(ctx)
			for i := range puzzles {
				day := first.AddDate(0, 0, i).Format(models.DayLayout)
				g.Go(func() error {
					p, err := a.scheduler.Peek(gctx, day, po.difficulty)
					if err != nil {
						return fmt.Errorf("puzzle for %s: %w", day, err)
					}
					puzzles[i] = p
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if po.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(puzzles)
			}
			for _, p := range puzzles {
				printPuzzle(out, a, p, po.showAnswers)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&po.day, "day", "", "first day to print (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&po.difficulty, "difficulty", models.DifficultyNormal, "normal or expert")
	cmd.Flags().IntVar(&po.days, "days", 1, "number of consecutive days to print")
	cmd.Flags().BoolVar(&po.showAnswers, "answers", false, "show the correct answers")
	cmd.Flags().BoolVar(&po.asJSON, "json", false, "print JSON")
	return cmd
}

func printPuzzle(w io.Writer, a *app, p *models.DailyPuzzle, showAnswers bool) {
	fmt.Fprintf(w, "%s (%s)\n", p.Day, p.Difficulty)
	for i, it := range p.Items {
		meta, _ := a.store.Category(it.Category)
		fmt.Fprintf(w, "  %d. %s %s: %s\n", i+1, meta.Emoji, meta.Name, it.Prompt)
		if showAnswers {
			fmt.Fprintf(w, "     -> %s\n", it.Answer)
		}
	}
}
