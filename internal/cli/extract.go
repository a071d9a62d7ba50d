package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subclock/internal/media"
	"github.com/mgpai22/subclock/internal/subtitle"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract an embedded subtitle stream from a video file",
	Long: `Extract a subtitle stream from a video container and save it as a subtitle file.

The stream is converted to SubRip by ffmpeg, parsed, and written in the format
implied by the output extension (srt, vtt, ass or json).

Examples:
  subclock extract movie.mkv
  subclock extract movie.mkv --list
  subclock extract movie.mkv -s 2 -o movie.en.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index (see --list)")
	extractCmd.Flags().
		StringP("output", "o", "", "Output file path (default <video>.srt)")
	extractCmd.Flags().
		Bool("list", false, "List subtitle streams and exit")
	extractCmd.Flags().
		String("ffmpeg", "", "Path to the ffmpeg binary")
	extractCmd.Flags().
		String("ffprobe", "", "Path to the ffprobe binary")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")
	list, _ := cmd.Flags().GetBool("list")

	if !media.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	extractor := media.NewExtractor(cfg.Media)
	ctx := cmd.Context()

	if list {
		streams, err := extractor.ListSubtitleStreams(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("failed to list streams: %w", err)
		}
		printStreams(cmd, streams)
		return nil
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	}
	writer, err := subtitle.NewWriter(subtitle.GetFormatFromExtension(outputPath))
	if err != nil {
		return err
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"stream", stream,
		"output", outputPath,
	)

	text, err := extractor.ExtractSubtitles(ctx, videoPath, stream)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	cues, err := subtitle.Parse(text)
	if err != nil {
		return fmt.Errorf("extracted stream %d: %w", stream, err)
	}

	if err := writeCues(outputPath, writer, cues); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s (%d cues)\n", absOutput, len(cues))
	return nil
}

func printStreams(cmd *cobra.Command, streams []media.Stream) {
	out := cmd.OutOrStdout()
	if len(streams) == 0 {
		fmt.Fprintln(out, "No subtitle streams found")
		return
	}
	for _, s := range streams {
		line := fmt.Sprintf("%d\t%s", s.Index, s.Codec)
		if s.Language != "" {
			line += "\t" + s.Language
		}
		if s.Title != "" {
			line += "\t" + s.Title
		}
		fmt.Fprintln(out, line)
	}
}
