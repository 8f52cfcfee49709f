package actions

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// commandField marks an entry as a raw workflow command such as add-mask.
const commandField = "workflow_command"

// Formatter renders logrus entries as GitHub workflow commands.
// Info entries are written verbatim; debug, warning and error entries become
// ::debug::, ::warning:: and ::error:: commands with their data escaped.
type Formatter struct{}

func (Formatter) Format(e *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	if cmd, ok := e.Data[commandField].(string); ok {
		b.WriteString("::" + cmd + "::" + escapeData(e.Message) + "\n")
		return b.Bytes(), nil
	}
	msg := e.Message
	if len(e.Data) > 0 {
		msg += " " + formatFields(e.Data)
	}
	switch e.Level {
	case log.InfoLevel:
		b.WriteString(msg)
	case log.DebugLevel, log.TraceLevel:
		b.WriteString("::debug::" + escapeData(msg))
	case log.WarnLevel:
		b.WriteString("::warning::" + escapeData(msg))
	default:
		b.WriteString("::error::" + escapeData(msg))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatFields(fields log.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

// escapeData applies the runner's escaping for command data.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
