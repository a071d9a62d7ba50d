// Package config resolves runtime settings from defaults, SUBCLOCK_* environment
// variables, an optional subclock.yaml and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	AppName   = "subclock"
	EnvPrefix = "SUBCLOCK"
)

// viper keys
const (
	KeyServerAddr        = "server.addr"
	KeyServerMaxUpload   = "server.max_upload_bytes"
	KeyServerAllowOrigin = "server.allow_origin"
	KeyPlayerTick        = "player.tick"
	KeyPlayerSeekStep    = "player.seek_step"
	KeyPlayerVisible     = "player.visible_cues"
	KeyMediaFFmpegPath   = "media.ffmpeg_path"
	KeyMediaFFprobePath  = "media.ffprobe_path"
	KeyLogVerbose        = "log.verbose"
)

// EnvKeyReplacer maps nested keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Defaults holds the factory value for every key.
var Defaults = map[string]any{
	KeyServerAddr:        ":8080",
	KeyServerMaxUpload:   int64(10 << 20),
	KeyServerAllowOrigin: "*",
	KeyPlayerTick:        100 * time.Millisecond,
	KeyPlayerSeekStep:    5 * time.Second,
	KeyPlayerVisible:     9,
	KeyMediaFFmpegPath:   "",
	KeyMediaFFprobePath:  "",
	KeyLogVerbose:        false,
}

type Config struct {
	Server ServerConfig
	Player PlayerConfig
	Media  MediaConfig
	Log    LogConfig
}

type ServerConfig struct {
	Addr           string
	MaxUploadBytes int64
	AllowOrigin    string
}

type PlayerConfig struct {
	// poll cadence of rendering collaborators
	Tick        time.Duration
	SeekStep    time.Duration
	VisibleCues int
}

type MediaConfig struct {
	FFmpegPath  string
	FFprobePath string
}

type LogConfig struct {
	Verbose bool
}

// New returns a viper instance with defaults and env bindings applied.
// configFile may be empty, in which case the standard locations are searched.
func New(fs afero.Fs, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:           v.GetString(KeyServerAddr),
			MaxUploadBytes: v.GetInt64(KeyServerMaxUpload),
			AllowOrigin:    v.GetString(KeyServerAllowOrigin),
		},
		Player: PlayerConfig{
			Tick:        v.GetDuration(KeyPlayerTick),
			SeekStep:    v.GetDuration(KeyPlayerSeekStep),
			VisibleCues: v.GetInt(KeyPlayerVisible),
		},
		Media: MediaConfig{
			FFmpegPath:  v.GetString(KeyMediaFFmpegPath),
			FFprobePath: v.GetString(KeyMediaFFprobePath),
		},
		Log: LogConfig{
			Verbose: v.GetBool(KeyLogVerbose),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the factory settings without consulting env or files.
func Default() Config {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	cfg, _ := Load(v)
	return cfg
}

func (c Config) validate() error {
	if c.Player.Tick <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPlayerTick, c.Player.Tick)
	}
	if c.Player.SeekStep <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPlayerSeekStep, c.Player.SeekStep)
	}
	if c.Player.VisibleCues < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyPlayerVisible, c.Player.VisibleCues)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyServerMaxUpload, c.Server.MaxUploadBytes)
	}
	return nil
}

// Env returns the environment variable consulted for key.
func Env(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(EnvKeyReplacer.Replace(key))
}
