package main

//
// Logging functionality
//

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// logStartTime is the time when we started logging
var logStartTime = time.Now()

// logColors maps a log level to its color.
var logColors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// logHandler implements the log handler required by github.com/apex/log
type logHandler struct {
	mu sync.Mutex

	// Writer is the underlying writer
	io.Writer
}

var _ log.Handler = &logHandler{}

// newLogHandler creates a new handler writing to w. When w is a terminal
// we make sure colors also work on Windows.
func newLogHandler(w io.Writer) *logHandler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return &logHandler{Writer: w}
}

// HandleLog implements log.Handler
func (h *logHandler) HandleLog(e *log.Entry) (err error) {
	level := logColors[e.Level].Sprintf("<%s>", e.Level)
	s := fmt.Sprintf("[%14.6f] %s %s", time.Since(logStartTime).Seconds(), level, e.Message)
	if len(e.Fields) > 0 {
		s += fmt.Sprintf(": %+v", e.Fields)
	}
	s += "\n"
	defer h.mu.Unlock()
	h.mu.Lock()
	_, err = h.Writer.Write([]byte(s))
	return
}
