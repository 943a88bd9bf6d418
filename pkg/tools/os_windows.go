package tools

import (
	"github.com/gonutz/w32/v2"
)

// OsVersion возвращает тип операционной системы и её версию (major, minor, patch).
// Нужна для отключения цветного лога в старых консолях.
//
//	| ------------------------------ | ------------- |
//	| Операционная система           | номер версии  |
//	| ------------------------------ | ------------- |
//	| Windows 10, 11, Server 2016+   | 10.0*         |
//	| Windows 8.1, Server 2012 R2    | 6.3*          |
//	| Windows 8, Server 2012         | 6.2           |
//	| Windows 7, Server 2008 R2      | 6.1           |
//	| Windows Vista, Server 2008     | 6.0           |
//	| Windows XP                     | 5.1           |
//	| ------------------------------ | ------------- |
func OsVersion() (string, int, int, int) {
	version := w32.GetVersion()
	major, minor := version&0xFF, version&0xFF00>>8
	return "windows", int(major), int(minor), 0
}
