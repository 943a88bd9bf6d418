package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/kirsrus/7zlist/pkg/sevenz"
	"github.com/maxatome/go-testdeep/td"
	"github.com/spf13/viper"
)

const testListing = `7-Zip [64] 16.02 : Copyright (c) 1999-2016 Igor Pavlov : 2016-05-21

Listing archive: test.7z

   Date      Time    Attr         Size   Compressed  Name
------------------- ----- ------------ ------------  ------------------------
2024-01-01 10:00:00 D....            0            0  docs
2024-01-01 10:00:01 .....          512          300  docs\readme.txt
2024-01-01 10:00:02 .....         2048         1024  docs\img\a.png
                    .....            7               top.bin
------------------- ----- ------------ ------------  ------------------------
2024-01-01 10:00:03               2567         1324  3 files, 1 folders
`

func writeFile(t *testing.T, name, text string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filePath, []byte(text), 0600); err != nil {
		t.Fatal(err)
	}
	return filePath
}

// execute запускает корневую команду с аргументами args и возвращает её вывод
func execute(args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}

	buff := new(bytes.Buffer)
	rootCmd.SetOut(buff)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)

	err := rootCmd.Execute()
	return buff.String(), err
}

func TestRoot_parse(t *testing.T) {
	listingPath := writeFile(t, "listing.txt", "header junk\n"+
		"----------------------------\n"+
		"2024-01-01 10:00:00 D....            0 folder\n"+
		"2024-01-01 10:00:01 .....          123       45 folder/file.txt\n"+
		"----------------------------\n"+
		"trailer junk\n")
	outPath := filepath.Join(t.TempDir(), "parsed.json")

	out, err := execute("--out", outPath, listingPath)
	if err != nil {
		t.Fatal(errors.ErrorStack(err))
	}

	saved, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	td.CmpTrue(t, strings.HasPrefix(out, string(saved)), "в stdout выводится тот же JSON")
	td.CmpTrue(t, strings.HasSuffix(out, "\nSummary:\n  Directories: 1\n  Files:       1\n"), out)

	entries := make([]sevenz.Entry, 0)
	td.CmpNoError(t, json.Unmarshal(saved, &entries))
	td.Cmp(t, entries, []sevenz.Entry{
		{Date: "2024-01-01", Time: "10:00:00", Attr: "D....", Name: "folder", IsDirectory: true},
		{Date: "2024-01-01", Time: "10:00:01", Attr: ".....", Size: 123, CompressedSize: 45, Name: "folder/file.txt"},
	})

	// Порядок ключей в JSON
	keys := []string{`"date"`, `"time"`, `"attr"`, `"size"`, `"compressed_size"`, `"name"`, `"is_directory"`}
	prev := -1
	for _, k := range keys {
		idx := strings.Index(string(saved), k)
		td.CmpGt(t, idx, prev, k)
		prev = idx
	}
}

func TestRoot_emptyListing(t *testing.T) {
	listingPath := writeFile(t, "empty.txt", "")
	outPath := filepath.Join(t.TempDir(), "parsed.json")

	out, err := execute("--out", outPath, listingPath)
	td.CmpNoError(t, err)
	td.Cmp(t, out, "[]\n\nSummary:\n  Directories: 0\n  Files:       0\n")
}

func TestRoot_errors(t *testing.T) {
	t.Run("не указан файл", func(t *testing.T) {
		_, err := execute()
		td.Cmp(t, errors.Cause(err), ErrUsage)
	})

	t.Run("файл не найден", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "parsed.json")

		_, err := execute("--out", outPath, filepath.Join(t.TempDir(), "absent.txt"))
		td.CmpError(t, err)
		td.CmpTrue(t, os.IsNotExist(errors.Cause(err)))

		_, statErr := os.Stat(outPath)
		td.CmpTrue(t, os.IsNotExist(statErr), "результат не сохраняется")
	})
}

func TestRoot_noHome(t *testing.T) {
	// Без домашней директории файл конфигурации не ищется, но разбор работает
	t.Setenv("HOME", "")

	listingPath := writeFile(t, "listing.txt", testListing)
	outPath := filepath.Join(t.TempDir(), "parsed.json")

	out, err := execute("--out", outPath, listingPath)
	if err != nil {
		t.Fatal(errors.ErrorStack(err))
	}
	td.CmpTrue(t, strings.HasSuffix(out, "\nSummary:\n  Directories: 1\n  Files:       3\n"), out)
}

func TestRoot_version(t *testing.T) {
	prevVersion := gitVersion
	gitVersion = " v1.2.3\n"
	t.Cleanup(func() {
		gitVersion = prevVersion
		f := rootCmd.PersistentFlags().Lookup("version")
		_ = f.Value.Set("false")
		f.Changed = false
	})

	out, err := execute("--version")
	td.CmpNoError(t, err)
	td.Cmp(t, out, "v1.2.3\n")
}

func TestReportError(t *testing.T) {
	prevOnlyLog := onlyLog
	t.Cleanup(func() { onlyLog = prevOnlyLog })

	t.Run("без ошибки", func(t *testing.T) {
		buff := new(bytes.Buffer)
		td.Cmp(t, reportError(buff, nil), 0)
		td.Cmp(t, buff.String(), "")
	})

	t.Run("не указан файл", func(t *testing.T) {
		_, err := execute()

		buff := new(bytes.Buffer)
		td.Cmp(t, reportError(buff, err), 1)
		td.Cmp(t, buff.String(), "Usage: 7zlist <7z_listing_file>\n")
	})

	t.Run("ошибка со стеком", func(t *testing.T) {
		onlyLog = false

		buff := new(bytes.Buffer)
		td.Cmp(t, reportError(buff, errors.Annotate(errors.New("сбой"), "чтение")), 1)
		td.CmpTrue(t, strings.HasPrefix(buff.String(), "ERROR: сбой\nSTACK:\n"), buff.String())
	})
}

func TestSetupLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "7zlist.log")
	viper.Set("log", logPath)
	t.Cleanup(func() { viper.Set("log", "") })

	log, closeLog := setupLog()
	log.Info("запись в файл лога")
	closeLog()

	td.Cmp(t, log.Out, os.Stderr)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	td.CmpTrue(t, strings.Contains(string(data), "запись в файл лога"), string(data))
}

func TestCheck(t *testing.T) {
	listingPath := writeFile(t, "listing.txt", testListing)
	outPath := filepath.Join(t.TempDir(), "parsed.json")

	_, err := execute("--out", outPath, listingPath)
	if err != nil {
		t.Fatal(errors.ErrorStack(err))
	}

	t.Run("совпадает", func(t *testing.T) {
		out, err := execute("check", listingPath, outPath)
		td.CmpNoError(t, err)
		td.CmpTrue(t, strings.Contains(out, "All entries match the ground truth!"), out)
	})

	t.Run("расхождения", func(t *testing.T) {
		truthPath := writeFile(t, "truth.json", `[
  {"date": "", "time": "", "attr": ".....", "size": 7, "compressed_size": 0, "name": "top.bin", "is_directory": false},
  {"date": "", "time": "", "attr": "D....", "size": 0, "compressed_size": 0, "name": "missing_dir", "is_directory": true}
]`)

		out, err := execute("check", listingPath, truthPath)
		td.Cmp(t, errors.Cause(err), ErrMismatch)
		td.CmpTrue(t, strings.Contains(out, "  - [DIR] missing_dir\n"), out)
		td.CmpTrue(t, strings.Contains(out, "  - [FILE] docs\\readme.txt\n"), out)
		td.CmpTrue(t, strings.Contains(out, "  - [DIR] docs\n"), out)
		td.CmpFalse(t, strings.Contains(out, "top.bin"), out)
	})
}

func TestPrintSummary(t *testing.T) {
	buff := new(bytes.Buffer)
	printSummary(buff, sevenz.Summary{Directories: 12, Files: 345})
	td.Cmp(t, buff.String(), "\nSummary:\n  Directories: 12\n  Files:       345\n")
}

func TestEncodeEntries(t *testing.T) {
	data, err := encodeEntries([]sevenz.Entry{{Attr: ".....", Name: "a&b <c>.txt", Size: 1}})
	td.CmpNoError(t, err)
	td.Cmp(t, string(data), `[
  {
    "date": "",
    "time": "",
    "attr": ".....",
    "size": 1,
    "compressed_size": 0,
    "name": "a&b <c>.txt",
    "is_directory": false
  }
]
`)
}
