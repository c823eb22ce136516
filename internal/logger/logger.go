package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options параметры логгера
type Options struct {
	Level string // debug, info, warn, error
	File  string // путь к файлу лога, без него только stdout
}

// New создаёт logrus-логгер, который пишет в stdout и, если задан, в файл.
// Возвращает функцию закрытия файла.
func New(opts Options) (*logrus.Logger, func() error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
		if opts.Level != "" {
			log.WithField("level", opts.Level).Warn("Unknown log level, using info")
		}
	}
	log.SetLevel(level)

	closeFn := func() error { return nil }
	if opts.File == "" {
		return log, closeFn
	}

	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.WithError(err).Warn("Failed to create log directory, using stdout only")
			return log, closeFn
		}
	}
	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.WithError(err).Warn("Failed to log to file, using stdout only")
		return log, closeFn
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return log, file.Close
}
