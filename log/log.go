// Package log wraps logrus with the field conventions used throughout
// the SDK: every log line carries a "component" field so a host
// application can filter messenger/gate/fsm noise independently.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetLevel parses and applies a level name ("debug", "info", "warn",
// "error"); an unrecognized name is ignored.
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return
	}
	base.SetLevel(lvl)
}

// For returns a logger scoped to one component, e.g. log.For("gate").
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}
