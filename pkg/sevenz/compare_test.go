package sevenz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maxatome/go-testdeep/td"
)

func TestCompare(t *testing.T) {
	truth := []Entry{
		{Attr: "D....", Name: "a", IsDirectory: true},
		{Attr: ".....", Name: "a/1.txt", Size: 1},
		{Attr: ".....", Name: "a/2.txt", Size: 2},
	}

	t.Run("совпадают", func(t *testing.T) {
		diff := Compare(truth, truth)
		td.CmpTrue(t, diff.Empty())
	})

	t.Run("расхождения", func(t *testing.T) {
		entries := []Entry{
			{Attr: ".....", Name: "b.txt"},
			{Attr: ".....", Name: "a/2.txt", Size: 2},
			{Attr: "D....", Name: "c", IsDirectory: true},
		}

		diff := Compare(entries, truth)
		td.CmpFalse(t, diff.Empty())
		td.Cmp(t, diff.Missing, []Entry{truth[0], truth[1]})
		td.Cmp(t, diff.Extra, []Entry{entries[0], entries[2]})
	})

	t.Run("пустые", func(t *testing.T) {
		td.CmpTrue(t, Compare(nil, nil).Empty())
	})
}

func TestLoadGroundTruth(t *testing.T) {
	dir := t.TempDir()

	t.Run("чтение", func(t *testing.T) {
		gtPath := filepath.Join(dir, "parsed.json")
		data := `[
  {
    "date": "2024-01-01",
    "time": "10:00:00",
    "attr": "D....",
    "size": 0,
    "compressed_size": 0,
    "name": "folder",
    "is_directory": true
  },
  {
    "date": "2024-01-01",
    "time": "10:00:01",
    "attr": ".....",
    "size": 123,
    "compressed_size": 45,
    "name": "folder/file.txt",
    "is_directory": false
  }
]`
		if err := os.WriteFile(gtPath, []byte(data), 0600); err != nil {
			t.Fatal(err)
		}

		entries, err := LoadGroundTruth(gtPath)
		td.CmpNoError(t, err)
		td.Cmp(t, entries, []Entry{
			{Date: "2024-01-01", Time: "10:00:00", Attr: "D....", Name: "folder", IsDirectory: true},
			{Date: "2024-01-01", Time: "10:00:01", Attr: ".....", Size: 123, CompressedSize: 45, Name: "folder/file.txt"},
		})
	})

	t.Run("битый JSON", func(t *testing.T) {
		gtPath := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(gtPath, []byte("[{"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := LoadGroundTruth(gtPath)
		td.CmpError(t, err)
	})

	t.Run("нет файла", func(t *testing.T) {
		_, err := LoadGroundTruth(filepath.Join(dir, "absent.json"))
		td.CmpError(t, err)
	})
}
