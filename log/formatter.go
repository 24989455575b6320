// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const defaultTimestampFormat = time.RFC3339

type renderFunc func(...string) string

func badge(bg string) renderFunc {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"}).
		Render
}

var (
	levelBadges = map[logrus.Level]renderFunc{
		logrus.PanicLevel: badge("9"),
		logrus.FatalLevel: badge("9"),
		logrus.ErrorLevel: badge("9"),
		logrus.WarnLevel:  badge("11"),
		logrus.InfoLevel:  badge("8"),
		logrus.DebugLevel: badge("12"),
		logrus.TraceLevel: badge("0"),
	}

	levelLetters = map[logrus.Level]string{
		logrus.PanicLevel: "X",
		logrus.FatalLevel: "!",
		logrus.ErrorLevel: "E",
		logrus.WarnLevel:  "W",
		logrus.InfoLevel:  "i",
		logrus.DebugLevel: "D",
		logrus.TraceLevel: "T",
	}

	plain renderFunc = func(strs ...string) string {
		return strings.Join(strs, " ")
	}
)

// TextFormatter renders one line per entry.  On a terminal the level is shown
// as a colored single letter badge, elsewhere as logfmt key/value pairs.
type TextFormatter struct {
	// ForceFormatting renders badges even when not writing to a terminal.
	ForceFormatting bool

	// DisableColors renders badges without colors.
	DisableColors bool

	// DisableTimestamp omits the timestamp.
	DisableTimestamp bool

	// TimestampFormat defaults to RFC3339.
	TimestampFormat string

	once       sync.Once
	isTerminal bool
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	f.once.Do(func() {
		if entry.Logger != nil {
			f.isTerminal = isTerminal(entry.Logger.Out)
		}
	})

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	format := f.TimestampFormat
	if format == "" {
		format = defaultTimestampFormat
	}

	if f.ForceFormatting || f.isTerminal {
		render := plain
		if !f.DisableColors {
			render = levelBadges[entry.Level]
		}

		b.WriteString(render(" " + levelLetters[entry.Level] + " "))
		if !f.DisableTimestamp {
			b.WriteString(" " + entry.Time.Format(format))
		}
		b.WriteString(" " + entry.Message)

		for _, k := range keys {
			fmt.Fprintf(b, " %s=%+v", render(k), entry.Data[k])
		}
	} else {
		pairs := []string{}
		if !f.DisableTimestamp {
			pairs = append(pairs, "time="+quote(entry.Time.Format(format)))
		}
		pairs = append(pairs, "level="+entry.Level.String())
		if entry.Message != "" {
			pairs = append(pairs, "msg="+quote(entry.Message))
		}
		for _, k := range keys {
			pairs = append(pairs, k+"="+quote(fmt.Sprint(entry.Data[k])))
		}

		b.WriteString(strings.Join(pairs, " "))
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

func quote(s string) string {
	for _, ch := range s {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.' || ch == '/' || ch == '_') {
			return fmt.Sprintf("%q", s)
		}
	}

	return s
}
