package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/kirsrus/7zlist/pkg/logging"
	"github.com/kirsrus/7zlist/pkg/sevenz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	binName   = "7zlist"
	product   = "7zlist"
	copyright = "Стерликов Кирилл"

	// Имя файла, в который по умолчанию сохраняется результат разбора
	defaultOutFile = "parsed.json"
)

var (
	// ErrUsage не указан файл листинга
	ErrUsage = errors.New("не указан файл листинга")

	cfgFile   string
	globalLog *logrus.Logger

	gitVersion string
	gitCommit  string
	gitDate    string

	// Ключ, который указывает, что при ошибке будет выводиться только лог (true),
	// или информация в свободной форме (false)
	onlyLog bool

	// Шаблоны отображения в WEB-интерфейсе
	templates Template
)

var rootCmd = &cobra.Command{
	Use:   "7zlist <7z_listing_file>",
	Short: "Разбирает вывод команды `7z l` в JSON",
	Long: `Программа разбирает текстовый вывод команды 7-Zip "l" (список файлов архива), сохранённый в файл,
и выводит его в виде JSON-массива записей. Результат также сохраняется в файл (по умолчанию parsed.json),
после чего выводится количество директорий и файлов.

Примеры использования:

Разбор листинга:
   7z l archive.7z > listing.txt
   7zlist listing.txt

Сохранение результата в другой файл:
   7zlist --out archive.json listing.txt

Сравнение с ранее сохранённым результатом:
   7zlist check listing.txt parsed.json

Просмотр дерева файлов через WEB-интерфейс:
   7zlist serve listing.txt
`,
	SilenceErrors: true, // Отключает вывод описния ошибок
	SilenceUsage:  true, // Отключает вывод текста "описание использования" при ошибке
	Args:          listingArgs,
	RunE:          rootRunE,
}

// Execute добавляет все дочерние команды к корневой команде и устанавливает соответствующие флаги.
// Это вызывается main.main(). Это должно произойти только один раз с rootCmd.
func Execute(gitVersionIn string, gitCommitIn string, gitDateIn string, templatesIn Template) {
	gitVersion = gitVersionIn
	gitCommit = gitCommitIn
	gitDate = strings.ReplaceAll(gitDateIn, "T", " ")
	templates = templatesIn

	err := rootCmd.Execute()

	code := reportError(os.Stdout, err)
	if code == 0 {
		return
	}

	if errors.Cause(err) != ErrUsage {
		// Задержка нужна, чтобы окно консоли Windows не закрылось раньше, чем будет прочитана ошибка
		time.Sleep(time.Duration(viper.GetInt("error_delay")) * time.Second)
	}
	os.Exit(code)
}

// reportError выводит ошибку выполнения команды и возвращает код завершения программы
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	if errors.Cause(err) == ErrUsage {
		_, _ = fmt.Fprintf(w, "Usage: %s <7z_listing_file>\n", binName)
		return 1
	}

	if onlyLog {
		if globalLog.Level > logrus.InfoLevel {
			globalLog.WithFields(map[string]interface{}{
				"stack": errors.ErrorStack(errors.Annotate(err, "end point")),
			}).Error(err.Error())
		} else {
			globalLog.Error(err.Error())
		}
		return 1
	}

	// Убираем дублирующуюся первую строку, если она соответствует имени ошибки
	stack := strings.Split(fmt.Sprintf("%+v", errors.ErrorStack(errors.Trace(err))), "\n")
	if len(stack) > 0 && stack[0] == errors.Cause(err).Error() {
		stack = stack[1:]
	}
	for i := range stack {
		stack[i] = strings.Trim(stack[i], ": ")
	}

	_, _ = fmt.Fprintf(w, "ERROR: %s\nSTACK:\n  ", errors.Cause(err))
	_, _ = fmt.Fprintf(w, "%s\n\n", strings.Join(stack, "\n  "))

	return 1
}

func init() {
	initLogging()
	cobra.OnInitialize(initGlobalConfig)

	rootCmd.PersistentFlags().Bool("version", false, "версия программы")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "файл конфигурации (по умолчанию $HOME/.7zlist.yaml)")
	rootCmd.PersistentFlags().String("log", "", "файл логирования")
	rootCmd.PersistentFlags().String("level", "", "уровень логирования (debug|info|warn|error)")
	rootCmd.Flags().String("out", defaultOutFile, "файл для сохранения результата в JSON")

	_ = viper.BindPFlag("log", rootCmd.PersistentFlags().Lookup("log"))
	_ = viper.BindPFlag("level", rootCmd.PersistentFlags().Lookup("level"))
	_ = viper.BindPFlag("out", rootCmd.Flags().Lookup("out"))

	errorDelay := 0
	if runtime.GOOS == "windows" {
		errorDelay = 3
	}
	viper.SetDefault("error_delay", errorDelay)

	rootCmd.AddCommand(checkCmd, serveCmd)
}

// initGlobalConfig reads in config file and ENV variables if set.
func initGlobalConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory. Without it the config file is not searched for.
		if home, err := os.UserHomeDir(); err == nil {
			// Search config in home directory with name ".7zlist" (without extension).
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".7zlist")
		} else {
			globalLog.Debugf("домашняя директория не определена, файл конфигурации не ищется: %s", err)
		}
	}

	viper.SetEnvPrefix("SEVENZLIST")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogging() {
	globalLog = logging.New(io.Discard, logrus.InfoLevel)
}

// setupLog направляет лог в stderr (stdout занят результатом) и, если указан, в файл лога.
// Уровень берётся из флага или конфигурации. Возвращаемая функция закрывает файл лога
func setupLog() (*logrus.Logger, func()) {
	log := globalLog
	log.Level = logrus.InfoLevel
	log.Out = os.Stderr

	closeLog := func() {}

	if logFileRaw := viper.GetString("log"); logFileRaw != "" {
		logFile, err := os.OpenFile(logFileRaw, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			log.Warnf("ошибка открытия файла для сохранения лога '%s'", logFileRaw)
		} else {
			logging.DisableColors(log)
			log.Out = io.MultiWriter(os.Stderr, logFile)
			closeLog = func() {
				log.Out = os.Stderr
				if err := logFile.Close(); err != nil {
					log.Warnf("ошибка закрытия файла лога '%s': %s", logFileRaw, err)
				}
			}
		}
	}

	if logLevelRaw := viper.GetString("level"); logLevelRaw != "" {
		if l, err := logrus.ParseLevel(logLevelRaw); err != nil {
			log.Warnf("неправильно указан уровень логирования '%s'", logLevelRaw)
		} else {
			log.Level = l
		}
	}

	if log.Level > logrus.InfoLevel {
		logging.ShortTimestamp(log)
	}

	return log, closeLog
}

// listingArgs требует путь к файлу листинга первым аргументом. Лишние аргументы игнорируются
func listingArgs(cmd *cobra.Command, args []string) error {
	if f := cmd.Flag("version"); f != nil && f.Changed {
		return nil
	}
	if len(args) == 0 {
		return errors.Trace(ErrUsage)
	}
	return nil
}

func rootRunE(cmd *cobra.Command, args []string) error {
	gitVersion = strings.TrimSpace(gitVersion)
	onlyLog = true

	if cmd.Flag("version").Changed {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", gitVersion)
		return nil
	}

	log, closeLog := setupLog()
	defer closeLog()

	listing, err := sevenz.NewListing(args[0], log)
	if err != nil {
		return errors.Trace(err)
	}

	data, err := encodeEntries(listing.Entries)
	if err != nil {
		return errors.Trace(err)
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return errors.Trace(err)
	}

	outFile := viper.GetString("out")
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return errors.Annotatef(err, "сохранение результата в '%s'", outFile)
	}
	log.Debugf("результат сохранён в '%s'", outFile)

	printSummary(out, listing.Summary())

	return nil
}

// encodeEntries сериализует записи в JSON с отступом в два пробела
func encodeEntries(entries []sevenz.Entry) ([]byte, error) {
	buff := new(bytes.Buffer)

	encoder := json.NewEncoder(buff)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(entries); err != nil {
		return nil, errors.Trace(err)
	}
	return buff.Bytes(), nil
}

func printSummary(w io.Writer, summary sevenz.Summary) {
	_, _ = fmt.Fprintf(w, "\nSummary:\n")
	_, _ = fmt.Fprintf(w, "  Directories: %d\n", summary.Directories)
	_, _ = fmt.Fprintf(w, "  Files:       %d\n", summary.Files)
}
