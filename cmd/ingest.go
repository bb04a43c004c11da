package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsmith/internal/ingest"
	"github.com/abhisek/quizsmith/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a YouTube video, audio recording or document",
}

var ingestYouTubeCmd = &cobra.Command{
	Use:   "youtube <url>",
	Short: "Fetch a video transcript and store it as a content source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		title, description, language := sourceFlags(cmd)
		src, err := a.ingest.IngestYouTube(cmd.Context(), ingest.YouTubeRequest{
			URL:         args[0],
			Title:       title,
			Description: description,
			Language:    language,
		})
		return reportIngested(a, cmd, src, err)
	},
}

var ingestAudioCmd = &cobra.Command{
	Use:   "audio <file>",
	Short: "Transcribe an MP3, WAV, M4A or MP4 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reject the file before touching the database or any service.
		if err := ingest.ValidateAudioFile(args[0]); err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		title, description, language := sourceFlags(cmd)
		src, err := a.ingest.IngestAudio(cmd.Context(), ingest.FileRequest{
			Path:        args[0],
			Title:       title,
			Description: description,
			Language:    language,
		})
		return reportIngested(a, cmd, src, err)
	},
}

var ingestDocumentCmd = &cobra.Command{
	Use:   "document <file>",
	Short: "Extract the text of a PDF or PNG/JPG image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ingest.ValidateDocumentFile(args[0]); err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		title, description, language := sourceFlags(cmd)
		src, err := a.ingest.IngestDocument(cmd.Context(), ingest.FileRequest{
			Path:        args[0],
			Title:       title,
			Description: description,
			Language:    language,
		})
		return reportIngested(a, cmd, src, err)
	},
}

func sourceFlags(cmd *cobra.Command) (title, description, language string) {
	title, _ = cmd.Flags().GetString("title")
	description, _ = cmd.Flags().GetString("description")
	language, _ = cmd.Flags().GetString("language")
	return title, description, language
}

// reportIngested prints the stored source. A failed pipeline still prints
// the FAILED record so its id can be retried.
func reportIngested(a *app, cmd *cobra.Command, src *store.ContentSource, err error) error {
	if src != nil {
		chunks, cerr := a.store.SourceRepo().Chunks(cmd.Context(), src.ID)
		if cerr != nil {
			return cerr
		}
		printSource(src, chunks, false)
	}
	if err != nil {
		if ingest.IsUserFacing(err) {
			return fmt.Errorf("no usable transcript: %w", err)
		}
		return err
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{ingestYouTubeCmd, ingestAudioCmd, ingestDocumentCmd} {
		c.Flags().String("title", "", "Source title (defaults to the file name or \"YouTube video\")")
		c.Flags().String("description", "", "Free-form description")
		c.Flags().String("language", "", "Language hint, e.g. en or az")
		ingestCmd.AddCommand(c)
	}
}
