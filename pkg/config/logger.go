package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/quillhq/quill/pkg/logging"
)

const (
	DefaultLoggingFormat = "text"
	DefaultLoggingLevel  = "INFO"
	DefaultLoggingOutput = "-"
)

func setupLogger() {
	logging.SetOutputFormat(viper.GetString(LoggingFormatKey))
	logging.SetLevel(viper.GetString(LoggingLevelKey))

	switch output := viper.GetString(LoggingOutputKey); output {
	case "", "-":
		logging.SetOutput(os.Stdout)
	case "=":
		logging.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logging.Default().WithError(err).WithField("path", output).
				Error("could not open log output file, falling back to stdout")
			logging.SetOutput(os.Stdout)
			return
		}
		logging.SetOutput(f)
	}
}
