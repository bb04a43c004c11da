package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Inspect and manage content sources",
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent content sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		srcs, err := s.SourceRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		printSources(srcs)
		return nil
	},
}

var sourceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a content source and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "source id")
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetBool("chunks")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		src, err := s.SourceRepo().Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		chunks, err := s.SourceRepo().Chunks(cmd.Context(), id)
		if err != nil {
			return err
		}
		printSource(src, chunks, full)
		return nil
	},
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a content source and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "source id")
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SourceRepo().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted source %d.\n", id)
		return nil
	},
}

var sourceRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-run extraction for a FAILED or stuck source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "source id")
		if err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		src, err := a.ingest.Retry(cmd.Context(), id)
		return reportIngested(a, cmd, src, err)
	},
}

func init() {
	sourceListCmd.Flags().IntP("limit", "n", 50, "Number of sources to show")
	sourceShowCmd.Flags().Bool("chunks", false, "Print every chunk's text")

	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceShowCmd)
	sourceCmd.AddCommand(sourceDeleteCmd)
	sourceCmd.AddCommand(sourceRetryCmd)
}
