//go:build !windows

package tools

import "runtime"

// OsVersion возвращает тип операционной системы. Номер версии определяется только для Windows
func OsVersion() (string, int, int, int) {
	return runtime.GOOS, 0, 0, 0
}
