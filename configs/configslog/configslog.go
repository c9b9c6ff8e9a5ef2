package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log yapılandırılmış (structured) logger, SLog şekerli (sugared) logger.
// Uygulamanın her yerinde bu ikisi kullanılır.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

func init() {
	// Testler logger'ı explicit init etmeden çağırabilir
	InitLogger(os.Getenv("LOG_LEVEL"))
}

// InitLogger logger'ı verilen seviyeye göre (yeniden) kurar.
// Geçersiz veya boş seviye için "info" kullanılır.
func InitLogger(level string) {
	var lvl zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Logger kurulamazsa devam etmenin anlamı yok
		panic(err)
	}

	Log = logger
	SLog = logger.Sugar()
}

// Sync tamponlanmış log kayıtlarını flush eder (kapanışta çağrılır).
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
