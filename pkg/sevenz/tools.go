package sevenz

import (
	"path"
	"strings"
)

// addToTree добавляет в дерево pathTree цепочку pathParts, начиная с позиции positionInPath.
// Все элементы цепочки, кроме последнего, являются директориями. Существующие директории
// переиспользуются; если последний элемент - директория, которая уже была создана неявно,
// её атрибуты обновляются.
func addToTree(pathParts []File, positionInPath int, pathTree *[]File) {
	if positionInPath >= len(pathParts) {
		return
	}

	part := pathParts[positionInPath]
	isLast := positionInPath == len(pathParts)-1

	if !part.IsDir { // Добаваляем оконечный файл
		part.Children = make([]File, 0)
		*pathTree = append(*pathTree, part)
		return
	}

	foundedIndex := -1
	for i, v := range *pathTree {
		if v.Name == part.Name && v.IsDir {
			foundedIndex = i
			break
		}
	}

	if foundedIndex == -1 { // Добавляем новую директорию
		newDir := part
		newDir.Children = make([]File, 0)
		addToTree(pathParts, positionInPath+1, &newDir.Children)
		*pathTree = append(*pathTree, newDir)
		return
	}

	// Используем существующую
	existing := &(*pathTree)[foundedIndex]
	if isLast {
		existing.CreateAt = part.CreateAt
		existing.Size = part.Size
		existing.CompressedSize = part.CompressedSize
	}
	addToTree(pathParts, positionInPath+1, &existing.Children)
}

// splitEntryPath нормализует путь из листинга к виду "a/b/c" и делит его на части.
// Для пустого пути возвращается nil
func splitEntryPath(name string) []string {
	filePath := strings.ReplaceAll(name, "\\", "/")
	filePath = strings.TrimPrefix(filePath, "/")
	filePath = strings.TrimSuffix(filePath, "/")

	if filePath == "" {
		return nil
	}
	return strings.Split(filePath, "/")
}

// chainFor строит цепочку директорий до файла entryNode по частям пути parts
func chainFor(parts []string, entryNode File) []File {
	chain := make([]File, 0, len(parts))
	for i, pathPart := range parts[:len(parts)-1] {
		chain = append(chain, File{
			IsDir:    true,
			Children: make([]File, 0),
			Name:     pathPart,
			FilePath: path.Join(parts[:i+1]...),
		})
	}
	return append(chain, entryNode)
}
