package logs

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

func init() {
	var err error
	if isTest() {
		Logger, err = zap.NewDevelopment(zap.AddCaller())
	} else {
		Logger, err = newConsole(false)
	}
	if err != nil {
		panic(err)
	}
}

// Init rebuilds the global logger, verbose enables debug level output.
func Init(verbose bool) error {
	l, err := newConsole(verbose)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func newConsole(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.DisableStacktrace = false
	}
	return cfg.Build(zap.AddCaller())
}

func isTest() bool {
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return strings.HasSuffix(os.Args[0], ".test")
}
