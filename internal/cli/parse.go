package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subclock/internal/media"
	"github.com/mgpai22/subclock/internal/session"
	"github.com/mgpai22/subclock/internal/subtitle"
)

var parseCmd = &cobra.Command{
	Use:   "parse [subtitle_file]",
	Short: "Parse a subtitle file and print its cues",
	Long: `Parse a SubRip file and write the cues as JSON, SRT, VTT or ASS.

Malformed blocks are skipped and reported. Use "-" to read from standard input.
When --output is given without --format, the format follows the file extension.

Examples:
  subclock parse movie.srt
  subclock parse movie.srt -f vtt -o movie.vtt
  subclock parse movie.mkv --stream 2 -o movie.ass
  cat movie.srt | subclock parse -`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().
		StringP("format", "f", string(subtitle.FormatJSON), "Output format (json, srt, vtt, ass)")
	parseCmd.Flags().
		StringP("output", "o", "", "Output file path (default stdout)")
	parseCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index for video files")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	stream, _ := cmd.Flags().GetInt("stream")
	formatName, _ := cmd.Flags().GetString("format")

	format := subtitle.Format(formatName)
	if outputPath != "" && !cmd.Flags().Changed("format") {
		format = subtitle.GetFormatFromExtension(outputPath)
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}

	text, err := readSource(cmd, path, stream)
	if err != nil {
		return err
	}

	report := subtitle.ParseReport(text)
	for _, skipped := range report.Skipped {
		logger.Warnw("Skipping subtitle block",
			"block", skipped.Index,
			"reason", skipped.Reason,
		)
	}
	cues, err := report.Result()
	if err != nil {
		return err
	}

	logger.Debugw("Parsed subtitles",
		"source", path,
		"cues", len(cues),
		"skipped", len(report.Skipped),
	)

	if outputPath == "" {
		return writer.Write(cmd.OutOrStdout(), cues)
	}
	if err := writeCues(outputPath, writer, cues); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d cues to %s\n", len(cues), absOutput)
	return nil
}

// reads subtitle text from stdin ("-"), a .srt file or a video container
func readSource(cmd *cobra.Command, path string, stream int) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", subtitle.NewUpstreamError(fmt.Errorf("error reading stdin: %w", err))
		}
		return string(data), nil
	}

	reader := session.NewReader(appFs,
		session.WithMediaSource(media.NewExtractor(cfg.Media), stream),
	)
	text, err := reader.Read(cmd.Context(), path)
	if err != nil {
		return "", err
	}
	return text, nil
}

func writeCues(path string, writer subtitle.Writer, cues []subtitle.Cue) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := appFs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := appFs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := writer.Write(f, cues); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
