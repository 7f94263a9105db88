package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the incremental build cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count and build-time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.GetStats(context.Background())
			if err != nil {
				return fmt.Errorf("read cache stats: %w", err)
			}

			fmt.Printf("entries: %d\n", stats.Entries)
			if stats.OldestAt != nil {
				fmt.Printf("oldest:  %s\n", stats.OldestAt.Format("2006-01-02 15:04:05"))
			}
			if stats.NewestAt != nil {
				fmt.Printf("newest:  %s\n", stats.NewestAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(context.Background())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Printf("cleared %d cached unit(s)\n", n)
			return nil
		},
	}
}
