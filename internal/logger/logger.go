package logger

import (
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Setup configura logrus con rotación de archivo vía lumberjack.
// El servidor escribe también a stdout para docker/systemd.
func Setup(path string) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 7,
		MaxAge:     14, // días
		Compress:   true,
	}

	logrus.SetOutput(os.Stdout)
	logrus.AddHook(&fileHook{rotator: rotator})
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.SetLevel(logrus.InfoLevel)
}

// fileHook duplica cada entrada al archivo rotado.
type fileHook struct {
	rotator *lumberjack.Logger
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}
	_, err = h.rotator.Write(line)
	return err
}
