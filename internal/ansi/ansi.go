// Package ansi renders the @R{...}-style color markup used throughout
// numcalc's error messages and CLI output. Color is emitted only when
// stdout is a terminal; Color() overrides the autodetect.
package ansi

import (
	"fmt"
	"os"
	"regexp"
	"unicode"

	"github.com/mattn/go-isatty"
)

var (
	colors = map[string]string{
		"k": "00;30", "K": "01;30",
		"r": "00;31", "R": "01;31",
		"g": "00;32", "G": "01;32",
		"y": "00;33", "Y": "01;33",
		"b": "00;34", "B": "01;34",
		"m": "00;35", "M": "01;35",
		"p": "00;35", "P": "01;35",
		"c": "00;36", "C": "01;36",
		"w": "00;37", "W": "01;37",
	}

	re = regexp.MustCompile(`(?s)@[kKrRgGyYbBmMpPcCwW*]{.*?}`)
)

var colorable = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// Color forces color output on or off, overriding the terminal autodetect.
func Color(c bool) {
	colorable = c
}

func colorize(s string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		if !colorable {
			return m[3 : len(m)-1]
		}
		if m[1:2] == "*" {
			rainbow := "RYGCBM"
			skipCount := 0
			out := ""
			for i, c := range m[3 : len(m)-1] {
				if unicode.IsSpace(c) {
					skipCount++
					out += string(c)
					continue
				}
				j := (i - skipCount) % len(rainbow)
				out += "\033[" + colors[rainbow[j:j+1]] + "m" + string(c) + "\033[00m"
			}
			return out
		}
		return "\033[" + colors[m[1:2]] + "m" + m[3:len(m)-1] + "\033[00m"
	})
}

// Sprintf formats according to a format specifier, expanding @X{...} color
// markup when stdout is a terminal.
func Sprintf(format string, a ...interface{}) string {
	return fmt.Sprintf(colorize(format), a...)
}

// Errorf is Sprintf wrapped as an error.
func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf(colorize(format), a...)
}
