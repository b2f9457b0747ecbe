package log

import (
	"fmt"
	"os"
	"strings"

	"birthdaybook/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// L é o logger global estruturado (zap.Logger). Use para logging de alta performance.
	L *zap.Logger
	// S é o logger global sugarizado (zap.SugaredLogger). Use para conveniência (printf-style logging).
	S *zap.SugaredLogger
)

// Init inicializa os loggers globais L e S.
// logLevel pode ser "debug", "info", "warn", "error", "dpanic", "panic", "fatal".
// env pode ser "development" ou "production" (qualquer outro valor usa production).
// logFile, se não vazio, adiciona um arquivo JSON com rotação (lumberjack) ao console.
func Init(logLevel, env, logFile string) {
	level, levelErr := zapcore.ParseLevel(strings.ToLower(logLevel))
	if levelErr != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if strings.ToLower(env) == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		// Logging é fundamental; sem logger não há como seguir.
		panic(fmt.Sprintf("Falha ao construir o logger zap: %v", err))
	}

	if logFile != "" {
		fileEncoder := zap.NewProductionEncoderConfig()
		fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoder),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // MB
				MaxBackups: 5,
				MaxAge:     7, // dias
				Compress:   true,
			}),
			level,
		)
		logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	if levelErr != nil && logLevel != "" {
		logger.Warn("Nível de log inválido fornecido, usando 'info' como padrão.", zap.String("invalid_level", logLevel))
	}

	L = logger
	S = logger.Sugar()

	// Substituir o logger global do zap para que possa ser acessado via zap.L() e zap.S().
	zap.ReplaceGlobals(L)
}

// Sync descarrega logs em buffer. Chamar no defer do main.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

// init configura um logger padrão a partir de config.Cfg. Pode ser re-inicializado em main.go.
func init() {
	env := config.Cfg.Environment
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	Init(config.Cfg.LogLevel, env, config.Cfg.LogFile)
}
