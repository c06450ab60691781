package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// An AnswerLog is a text file with one "<name>,<value>" line per
// answer.
type AnswerLog struct {
	pn string
}

func NewAnswerLog(pn string) *AnswerLog {
	return &AnswerLog{pn: pn}
}

func (l *AnswerLog) Pathname() string {
	return l.pn
}

// Truncate empties the log, creating it (and its directory) if
// needed.
func (l *AnswerLog) Truncate() error {
	if err := os.MkdirAll(filepath.Dir(l.pn), 0777); err != nil {
		return err
	}
	f, err := os.Create(l.pn)
	if err != nil {
		return err
	}
	return f.Close()
}

func (l *AnswerLog) Append(name, value string) error {
	f, err := os.OpenFile(l.pn, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	value = strings.ReplaceAll(value, "\n", " ")
	if _, err := fmt.Fprintf(f, "%s,%s\n", name, value); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
