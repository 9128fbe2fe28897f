package slogwrap

import (
	"log/slog"
	"os"

	"github.com/indexdata/go-utils/utils"
)

func slogEnable(enable bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if enable {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func SlogWrap() *slog.Logger {
	return slogEnable(
		utils.Must(utils.GetEnvBool("ENABLE_JSON_LOG", false)),
		parseLevel(utils.GetEnv("LOG_LEVEL", "info")))
}
