package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pvlink/pvlink/cmd"
	"github.com/pvlink/pvlink/internal/repository"
)

var statsCodeFlag string

// StatsCmd prints click statistics for a short code.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Displays click statistics for a short link.",
	Long: `Shows the total click count and the per-country breakdown for a link.

Example:
  pvlink stats --code=abc123`,
	Run: func(_ *cobra.Command, _ []string) {
		if statsCodeFlag == "" {
			fmt.Fprintln(os.Stderr, "Error: --code flag is required")
			os.Exit(1)
		}

		db, closeDB := mustOpenDatabase(mustLoadConfig())
		defer closeDB()

		links := repository.NewLinkRepository(db)
		ctx := context.Background()

		link, err := links.FindByShortCode(ctx, statsCodeFlag)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "short code '%s' not found\n", statsCodeFlag)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to look up link: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Short code: %s\n", link.ShortCode)
		fmt.Printf("Long URL:   %s\n", link.LongURL)
		fmt.Printf("Created:    %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
		if link.ExpiresAt != nil {
			fmt.Printf("Expires:    %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("Clicks:     %d\n", link.ClickCount)

		buckets, err := links.CountryClicks(ctx, link.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to fetch country breakdown: %v\n", err)
			os.Exit(1)
		}
		if len(buckets) > 0 {
			fmt.Println("By country:")
			for _, b := range buckets {
				fmt.Printf("  %-4s %d\n", b.Country, b.Clicks)
			}
		}
	},
}

func init() {
	StatsCmd.Flags().StringVar(&statsCodeFlag, "code", "", "Short code to show statistics for")
	cmd.RootCmd.AddCommand(StatsCmd)
}
