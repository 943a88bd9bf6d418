package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LogInfoWidget выравнивает и обрамляет строки text рамкой из символа border.
// Из border используется только первый символ; пустой border заменяется на "*"
func LogInfoWidget(text []string, border string) []string {
	if border == "" {
		border = "*"
	} else if r, size := utf8.DecodeRuneInString(border); size > 0 {
		border = string(r)
	}

	maxLen := 0
	for _, v := range text {
		if l := utf8.RuneCountInString(v); l > maxLen {
			maxLen = l
		}
	}

	borderTopBottom := strings.Repeat(border, maxLen+4)

	formatedText := make([]string, 0, len(text)+2)
	formatedText = append(formatedText, borderTopBottom)
	for _, v := range text {
		pad := strings.Repeat(" ", maxLen-utf8.RuneCountInString(v))
		formatedText = append(formatedText, fmt.Sprintf("%s %s%s %s", border, v, pad, border))
	}
	formatedText = append(formatedText, borderTopBottom)

	return formatedText
}
