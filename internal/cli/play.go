package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/media"
	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/session"
	"github.com/mgpai22/subclock/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [subtitle_file]",
	Short: "Play subtitles in the terminal",
	Long: `Play a subtitle file against a virtual clock, highlighting the active cue.

Video files are accepted too; the selected subtitle stream is extracted with ffmpeg.

Keys:
  space        play / pause
  left, right  seek back / forward by the seek step
  home         restart from the beginning
  r            reload the file
  q            quit

Examples:
  subclock play movie.srt
  subclock play movie.mkv --stream 1
  subclock play movie.srt --seek-step 10s --tick 50ms`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index for video files")
	playCmd.Flags().
		Duration("tick", 0, "Poll interval (default 100ms)")
	playCmd.Flags().
		Duration("seek-step", 0, "Seek distance for left/right (default 5s)")
	playCmd.Flags().
		Int("visible", 0, "Number of cues shown around the active one (default 9)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	path := args[0]
	stream, _ := cmd.Flags().GetInt("stream")

	if _, err := appFs.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := session.NewReader(appFs,
		session.WithMediaSource(media.NewExtractor(cfg.Media), stream),
	)
	// the player owns the terminal while it runs
	sess := session.New(playback.NewEngine(), session.WithLogger(logging.NewNop()))

	logger.Debugw("Starting player",
		"file", path,
		"tick", cfg.Player.Tick,
		"seek_step", cfg.Player.SeekStep,
	)

	err := tui.Run(ctx, tui.Options{
		Path:    path,
		Session: sess,
		Reader:  reader,
		Player:  cfg.Player,
		Logger:  logger,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}
