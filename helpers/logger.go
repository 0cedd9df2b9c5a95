package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/specharvest/logger"
)

// FailureLogger records documents that were skipped during a crawl
type FailureLogger interface {
	LogFailure(stage, url string, err error)
}

// FileFailureLog appends one line per failure to a file
type FileFailureLog struct {
	mu   sync.Mutex
	path string
}

// NewFileFailureLog creates a failure log writing to path
func NewFileFailureLog(path string) *FileFailureLog {
	return &FileFailureLog{path: path}
}

// LogFailure appends "[timestamp] [stage] url: err" and mirrors it to the structured log
func (l *FileFailureLog) LogFailure(stage, url string, err error) {
	logger.ForComponent(stage).WithError(err).Warn().Str("url", url).Msg("document skipped")

	if l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Error("파일 열기 오류: %v", fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s: %v\n", timestamp, stage, url, err)
}

// NopFailureLog discards failures
type NopFailureLog struct{}

// LogFailure does nothing
func (NopFailureLog) LogFailure(string, string, error) {}
