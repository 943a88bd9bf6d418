package cmd

import "time"

// Template описывает шаблоны WEB-интерфейса
type Template struct {

	// Шаблон главной страницы
	Index string

	// Шаблон дерева файлов
	Tree string
}

// TemplateIndex данные для передачи в шаблон Index
type TemplateIndex struct {
	Title string

	// Версия программы
	Version string

	// Время коммита
	Date string

	Copyright string

	// Имя файла листинга
	ListingName string

	Directories int
	Files       int

	// Суммарный размер файлов в человекочитаемом виде
	TotalSize string
}

// TemplatesFiles описывает вывод дерева файлов архива
type TemplatesFiles struct {
	Title string

	// Версия программы
	Version string

	// Время коммита
	Date string

	Copyright string

	// URL возврата обратно (..)
	BackwardURL File

	FilesOrDir []File
}

// File описывает файл в дереве архива
type File struct {
	IsDir    bool
	Name     string
	URL      string
	Size     string
	CreateAt time.Time
}
