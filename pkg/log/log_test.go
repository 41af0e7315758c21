package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tim-beatham/waterq/pkg/conf"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusLoggerWithOutput(conf.WARNING, &buf)

	logger.WriteInfof("loaded %d rows", 10)

	if buf.Len() != 0 {
		t.Fatalf(`info message should not be written at warning level`)
	}

	logger.WriteWarnf("dropped %d rows", 2)

	if !strings.Contains(buf.String(), "dropped 2 rows") {
		t.Fatalf(`expected warning to be written got %s`, buf.String())
	}
}

func TestDebugLevelWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusLoggerWithOutput(conf.DEBUG, &buf)

	logger.WriteDebugf("parsed header %s", "temperature_c")

	if !strings.Contains(buf.String(), "parsed header temperature_c") {
		t.Fatalf(`expected debug message to be written got %s`, buf.String())
	}
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	previous := Log
	defer SetLogger(previous)

	var buf bytes.Buffer
	SetLogger(NewLogrusLoggerWithOutput(conf.INFO, &buf))

	Log.WriteErrorf("could not load %s", "readings.csv")

	if !strings.Contains(buf.String(), "could not load readings.csv") {
		t.Fatalf(`expected the global logger to be replaced`)
	}
}
