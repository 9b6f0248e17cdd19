package shortcodes

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a JSON logger writing to stdout and, if file is not
// empty, to a size-rotated log file at that path.
func NewLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("invalid log level: %w", err)
	}

	syncer := zapcore.AddSync(os.Stdout)
	if file != "" {
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 7,
			MaxAge:     28, // days
		}))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), syncer, lvl)

	return zap.New(core).With(zap.String("service", "shortcodes")), nil
}
