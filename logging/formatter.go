package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[2m"
	colorCyan  = "\x1b[36m"
)

// TextFormatter is a compact logrus formatter for daemon output.
type TextFormatter struct {
	DisableTimestamp bool
	Color            bool
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		if f.Color {
			b.WriteString(colorDim)
		}
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		if f.Color {
			b.WriteString(colorReset)
		}
		b.WriteString(" ")
	}

	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	b.WriteString(fmt.Sprintf("[%s]", strings.ToUpper(levelStr)))

	if component, ok := entry.Data["component"]; ok {
		if f.Color {
			b.WriteString(fmt.Sprintf(" [%s%v%s]", colorCyan, component, colorReset))
		} else {
			b.WriteString(fmt.Sprintf(" [%v]", component))
		}
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Remaining fields in stable order
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
