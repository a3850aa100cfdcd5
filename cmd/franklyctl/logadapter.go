package main

import "github.com/sirupsen/logrus"

// logrusAdapter implements device.Logger over a *logrus.Logger, turning
// the alternating key/value pairs Device calls its logger with into
// logrus fields.
type logrusAdapter struct {
	log *logrus.Logger
}

func newLogrusAdapter(level logrus.Level) *logrusAdapter {
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusAdapter{log: log}
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}

func (a *logrusAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (a *logrusAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(fields(keysAndValues)).Info(msg)
}

func (a *logrusAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(fields(keysAndValues)).Error(msg)
}
