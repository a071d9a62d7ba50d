package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mgpai22/subclock/internal/config"
	"github.com/mgpai22/subclock/internal/logging"
)

var (
	verbose bool
	cfgFile string

	appFs    afero.Fs = afero.NewOsFs()
	settings *viper.Viper
	cfg      config.Config
	logger   *logging.Logger
)

// command flags that override a config key when set
var flagKeys = map[string]string{
	"verbose":   config.KeyLogVerbose,
	"addr":      config.KeyServerAddr,
	"tick":      config.KeyPlayerTick,
	"seek-step": config.KeyPlayerSeekStep,
	"visible":   config.KeyPlayerVisible,
	"ffmpeg":    config.KeyMediaFFmpegPath,
	"ffprobe":   config.KeyMediaFFprobePath,
}

var rootCmd = &cobra.Command{
	Use:   "subclock",
	Short: "SubRip subtitle parser and playback clock",
	Long: `Subclock parses SubRip (.srt) subtitle files and plays them back against
a virtual clock, highlighting whichever cue is active.

Subtitles can be played in the terminal, converted to other formats,
pulled out of video containers, or served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.New(appFs, cfgFile)
		if err != nil {
			return err
		}
		if err := bindFlags(cmd, v); err != nil {
			return err
		}

		loaded, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		settings = v
		cfg = loaded
		logger = logging.NewLogger(cfg.Log.Verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "Config file (default ./subclock.yaml)")
}
