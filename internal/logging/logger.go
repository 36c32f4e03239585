// Package logging builds the logger shared by all commands.
package logging

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w. Only warnings and errors are shown
// unless verbose is set, in which case debug output is enabled too.
// Every entry carries the run_id of this invocation.
func New(w io.Writer, verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !verbose})
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l.WithField("run_id", uuid.NewString())
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
