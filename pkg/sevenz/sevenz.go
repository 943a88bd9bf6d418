package sevenz

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"
)

var (
	// ErrNotText возвращается, если файл листинга не является текстом в UTF-8
	ErrNotText = errors.New("листинг не является текстом в кодировке UTF-8")
)

const (
	// Имя директории, которой начинаются пути в листингах TAR-архивов
	tarRootDir = "."

	// Формат даты и времени в листинге 7z
	listingTimeLayout = "2006-01-02 15:04:05"
)

// Listing прочитанный и разобранный файл с выводом `7z l`
type Listing struct {
	log *logrus.Entry

	// Путь к файлу листинга
	Path string

	// Записи таблицы файлов в порядке следования
	Entries []Entry

	// Дерево файлов архива
	filesTree []File

	// Префикс для путей к файлам внутри архива. Нужен для отличия путей в ISO файлах (вида boot\grub\i386-efi\fdt.lst),
	// от путей TAR файлов (вида .\dists\1.7_x86-64\main, т.е. с префиксом `.\`)
	pathPrefix string
}

// NewListing читает файл листинга listingPath, разбирает его и строит дерево файлов.
// Ошибка возвращается только если файл не удалось прочитать как текст.
func NewListing(listingPath string, log *logrus.Logger) (*Listing, error) {
	if log == nil {
		log = logrus.New()
		log.Out = io.Discard
	}

	text, err := ReadListingFile(listingPath)
	if err != nil {
		return nil, errors.Trace(err)
	}

	m := Listing{
		log:  log.WithField("scope", "7z"),
		Path: listingPath,
	}

	m.Entries = ParseListing(text)
	m.filesTree = m.buildTree(m.Entries)

	m.log.Debugf("в '%s' распознано записей: %d", filepath.Base(listingPath), len(m.Entries))

	return &m, nil
}

// ReadListingFile читает файл листинга целиком и проверяет, что это текст в UTF-8
func ReadListingFile(listingPath string) (string, error) {
	data, err := os.ReadFile(listingPath)
	if err != nil {
		return "", errors.Annotate(err, listingPath)
	}

	if !utf8.Valid(data) {
		return "", errors.Annotate(ErrNotText, listingPath)
	}

	return string(data), nil
}

// Summary возвращает количество директорий и файлов в листинге
func (m Listing) Summary() Summary {
	return Summarize(m.Entries)
}

// Root возвращает корень дерева файлов
func (m Listing) Root() File {
	root := NewRoot()
	root.Children = m.filesTree
	return root
}

func (m *Listing) buildTree(entries []Entry) []File {
	result := make([]File, 0)

	for _, entry := range entries {
		name := entry.Name

		// Если это TAR архив (определяем по наличию директории '.',
		// то устанавливаем префикс доступа к файлам. Саму же директорию пропускаем
		if name == tarRootDir {
			m.pathPrefix = tarRootDir + "/"
			continue
		}

		parts := splitEntryPath(strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), m.pathPrefix))
		if len(parts) == 0 {
			continue
		}

		newFileOrDir := File{
			IsDir:          entry.IsDirectory,
			Size:           entry.Size,
			CompressedSize: entry.CompressedSize,
			Name:           parts[len(parts)-1],
			FilePath:       path.Join(parts...),
		}

		// Нормализуем время
		if entry.Date != "" {
			testTime := entry.Date + " " + entry.Time
			t, err := time.Parse(listingTimeLayout, testTime)
			if err != nil {
				m.log.Warnf("не удалось распарсить время создания файла/директории '%s'", testTime)
			}
			newFileOrDir.CreateAt = t
		}

		addToTree(chainFor(parts, newFileOrDir), 0, &result)
	}

	return result
}

// ReadPath по пути path возвращает или целевой файл, или списки директорий и файлов
// на уровне, указанном в path
func (m Listing) ReadPath(pathDirOrFile string) (*File, []File, error) {
	pathItem := strings.TrimSpace(pathDirOrFile)
	pathItem = strings.TrimPrefix(pathItem, "/")
	pathItem = strings.TrimSuffix(pathItem, "/")

	// Определяем папку
	currentLevel := m.filesTree

	pathParts := strings.Split(pathItem, "/")
	if len(pathParts) > 1 {
		for _, pathPart := range pathParts[:len(pathParts)-1] {
			pathPart := pathPart
			found := funk.Find(currentLevel, func(v File) bool {
				return v.Name == pathPart && v.IsDir
			})

			if found != nil {
				currentLevel = found.(File).Children
			} else {
				m.log.Errorf("не найден путь '%s'", pathDirOrFile)
				return nil, nil, errors.NotFoundf("путь '%s'", pathDirOrFile)
			}
		}
	}

	// Заходим в директорию или возвращаем файл
	if pathItem != "" { // Корневая директория
		pathEndFile := path.Base(pathItem)
		found := funk.Find(currentLevel, func(v File) bool {
			return v.Name == pathEndFile
		})

		if found != nil {
			v := found.(File)
			if !v.IsDir {
				return &v, make([]File, 0), nil
			}
			currentLevel = v.Children
		} else {
			m.log.Errorf("не найден путь '%s:%s'", filepath.Base(m.Path), pathDirOrFile)
			return nil, nil, errors.NotFoundf("путь '%s'", pathDirOrFile)
		}
	}

	// Читаем содержимое папки
	inDirs := make([]File, 0)
	inFiles := make([]File, 0)

	for _, v := range currentLevel {
		if v.IsDir {
			inDirs = append(inDirs, v)
		} else {
			inFiles = append(inFiles, v)
		}
	}

	sort.Slice(inDirs, func(i, j int) bool { return inDirs[i].Name < inDirs[j].Name })
	sort.Slice(inFiles, func(i, j int) bool { return inFiles[i].Name < inFiles[j].Name })

	return nil, append(inDirs, inFiles...), nil
}
