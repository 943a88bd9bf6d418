package logging

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"

	"github.com/kirsrus/7zlist/pkg/tools"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Пакеты, вызовы из которых пропускаются при поиске точки логирования
var skipFuncPrefixes = []string{"LogrusContextHook.", "logrus.", "runtime.", "testing."}

// LogrusContextHook добавляет в запись лога поле "file" с именем файла и номером строки вызова
type LogrusContextHook struct{}

// Levels возвращает текущие уровни
func (hook LogrusContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire выбирает информацию из текущего места вызова лога
func (hook LogrusContextHook) Fire(entry *logrus.Entry) error {
	if caller, ok := callerOutside(skipFuncPrefixes); ok {
		entry.Data["file"] = caller
	}
	return nil
}

// callerOutside поднимается по стеку до первой функции, не попадающей под skip,
// и возвращает её место в виде "file.go:123"
func callerOutside(skip []string) (string, bool) {
mainloop:
	for i := 0; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			return "", false
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		funcName := path.Base(fn.Name()) // Имя функции

		if strings.Contains(funcName, ".LogrusContextHook.") || strings.Contains(funcName, ".callerOutside") {
			continue
		}
		for _, v := range skip {
			if strings.HasPrefix(funcName, v) {
				continue mainloop
			}
		}

		return fmt.Sprintf("%s:%d", path.Base(file), line), true
	}
}

// New создаёт логгер с форматированием под текущую ОС. Цвет отключается на Windows 7 и ниже,
// где консоль его не поддерживает
func New(out io.Writer, level logrus.Level) *logrus.Logger {
	coloredLog := true
	osName, osMajor, osMinor, _ := tools.OsVersion()
	if osName == "windows" && osMajor <= 6 && osMinor <= 1 { // Windows 7, 2008 и ниже
		coloredLog = false
	}

	log := logrus.New()
	log.Level = level
	log.Out = out

	if osName == "windows" {
		log.Formatter = &logrus.TextFormatter{
			ForceColors: coloredLog,
		}
	} else {
		log.Formatter = &prefixed.TextFormatter{
			DisableColors: !coloredLog,
		}
	}
	log.AddHook(LogrusContextHook{})

	return log
}

// DisableColors выключает цвет, например при записи лога в файл
func DisableColors(log *logrus.Logger) {
	switch f := log.Formatter.(type) {
	case *prefixed.TextFormatter:
		f.ForceColors = false
		f.DisableColors = true
	case *logrus.TextFormatter:
		f.ForceColors = false
		f.DisableColors = true
	}
}

// ShortTimestamp убирает полную метку времени в отладочном режиме
func ShortTimestamp(log *logrus.Logger) {
	if f, ok := log.Formatter.(*prefixed.TextFormatter); ok {
		f.FullTimestamp = false
	}
}
