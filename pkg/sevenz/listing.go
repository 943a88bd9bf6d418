package sevenz

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thoas/go-funk"
)

const (
	// Маркер директории в первой позиции поля атрибутов
	dirMarker = 'D'

	// Строка из дефисов, открывающая и закрывающая таблицу файлов в выводе `7z l`
	dashRun = "----------"
)

// Строка таблицы файлов. Дата и время либо присутствуют оба, либо отсутствуют оба;
// размер и сжатый размер необязательны; всё остальное до конца строки является именем.
//
//	2018-06-20 18:50:00 .....         5188         5188  pool\non-free\libparsec.deb
//	2018-06-20 20:32:10 D....                            boot
//	                    D....                            boot
//
// Перед полем атрибутов обязателен хотя бы один пробельный символ.
var reListingLine = regexp.MustCompile(`^\s*(?:(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2}:\d{2}))?\s+([D.]{5})(?:\s+(\d+))?(?:\s+(\d+))?\s+(.+)$`)

// Разделители строк: CRLF, одиночные CR и LF, а также VT, FF, FS, GS, RS, NEL, LS и PS
var reLineBreak = regexp.MustCompile(`\r\n|[\n\r\v\f\x1c-\x1e\x{0085}\x{2028}\x{2029}]`)

// Entry одна распознанная строка таблицы файлов. Порядок полей совпадает с порядком
// ключей в JSON.
type Entry struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	Attr           string `json:"attr"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressed_size"`
	Name           string `json:"name"`
	IsDirectory    bool   `json:"is_directory"`
}

// Summary количество директорий и файлов в листинге
type Summary struct {
	Directories int `json:"directories"`
	Files       int `json:"files"`
}

// ParseListing разбирает вывод `7z l` и возвращает записи таблицы файлов в порядке их
// следования. Строки до первой линии дефисов и всё, начиная со второй линии дефисов,
// игнорируются. Нераспознанные строки внутри таблицы молча пропускаются.
func ParseListing(text string) []Entry {
	result := make([]Entry, 0)
	inListing := false

	for _, line := range reLineBreak.Split(text, -1) {
		if strings.HasPrefix(line, dashRun) {
			if inListing {
				break
			}
			inListing = true
			continue
		}

		if !inListing {
			continue
		}

		if entry, ok := parseListingLine(line); ok {
			result = append(result, entry)
		}
	}

	return result
}

// parseListingLine разбирает одну строку таблицы. ok == false, если строка не является
// записью о файле или директории.
func parseListingLine(line string) (Entry, bool) {
	match := reListingLine.FindStringSubmatch(line)
	if len(match) == 0 {
		return Entry{}, false
	}

	size, err := parseSize(match[4])
	if err != nil {
		return Entry{}, false
	}
	compressed, err := parseSize(match[5])
	if err != nil {
		return Entry{}, false
	}

	name := strings.TrimSpace(match[6])
	if name == "" {
		return Entry{}, false
	}

	return Entry{
		Date:           match[1],
		Time:           match[2],
		Attr:           match[3],
		Size:           size,
		CompressedSize: compressed,
		Name:           name,
		IsDirectory:    match[3][0] == dirMarker,
	}, true
}

// parseSize переводит десятичную строку в число. Пустая строка даёт 0.
// Ведущие нули не меняют систему счисления.
func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// Summarize считает директории и файлы среди записей
func Summarize(entries []Entry) Summary {
	dirs := funk.Filter(entries, func(e Entry) bool {
		return e.IsDirectory
	}).([]Entry)

	return Summary{
		Directories: len(dirs),
		Files:       len(entries) - len(dirs),
	}
}
