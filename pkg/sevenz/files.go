package sevenz

import "time"

// File олицетворяет описание файла из листинга архива в виде дерева с потомками в Children.
// Корневая папка создаётся через функцию NewRoot
type File struct {
	CreateAt       time.Time
	IsRoot         bool // Является ли это корневая директория
	IsDir          bool
	Size           int64
	CompressedSize int64

	// Путь внутри архива с разделителем '/'
	FilePath string

	// Для построения дерева

	Children []File
	Name     string
}

func NewRoot() File {
	return File{
		CreateAt: time.Time{},
		IsRoot:   true,
		IsDir:    true,
		Size:     0,
		FilePath: "",
		Name:     "",
		Children: make([]File, 0),
	}
}

// TotalSize возвращает суммарный размер всех файлов в поддереве
func (f File) TotalSize() int64 {
	if !f.IsDir {
		return f.Size
	}

	var total int64
	for _, v := range f.Children {
		total += v.TotalSize()
	}
	return total
}
