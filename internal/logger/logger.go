package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	maxBufferLines  = 100
	flushInterval   = 1 * time.Second
	maxLogAge       = 7 * 24 * time.Hour
	cleanupInterval = 24 * time.Hour
)

// AuditLog is a buffered, daily-rotated log file for one endpoint.
type AuditLog struct {
	name   string
	dir    string
	mu     sync.Mutex
	buffer []string
	file   *os.File
	date   string
	ticker *time.Ticker
	done   chan struct{}
	closed bool
}

var (
	logs    = make(map[string]*AuditLog)
	logsMu  sync.Mutex
	logDir  string
	cleanup sync.Once
)

var nameRe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName converts an endpoint name to a safe filename component.
func sanitizeName(name string) string {
	return strings.Trim(nameRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Init enables audit logging into dir. Until Init is called, For returns
// logs that discard every line.
func Init(dir string) {
	logsMu.Lock()
	defer logsMu.Unlock()
	logDir = dir
	if dir == "" {
		return
	}
	cleanup.Do(func() {
		go cleanupLoop(dir)
	})
}

// For returns (or creates) the audit log for the given endpoint name.
func For(name string) *AuditLog {
	logsMu.Lock()
	defer logsMu.Unlock()

	safeName := sanitizeName(name)
	if l, ok := logs[safeName]; ok && !l.closed {
		return l
	}

	l := &AuditLog{
		name: safeName,
		dir:  logDir,
		done: make(chan struct{}),
	}
	if l.dir != "" {
		l.ticker = time.NewTicker(flushInterval)
		go l.flushLoop()
	}

	logs[safeName] = l
	return l
}

// Log appends one line with the given key/value pairs, e.g.
// Log("request_id", id, "total", 30).
func (l *AuditLog) Log(kv ...any) {
	if l.dir == "" {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%s", kv[i], formatValue(kv[i+1]))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.buffer = append(l.buffer, b.String())
	if len(l.buffer) >= maxBufferLines {
		l.flushLocked()
	}
}

// formatValue quotes values that would otherwise split or forge fields.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\\\t\r\n") || !strconv.CanBackquote(s) {
		return strconv.Quote(s)
	}
	return s
}

func (l *AuditLog) flushLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.mu.Lock()
			l.flushLocked()
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

func (l *AuditLog) flushLocked() {
	if len(l.buffer) == 0 {
		return
	}

	today := time.Now().Format("2006-01-02")

	if l.date != today || l.file == nil {
		if l.file != nil {
			l.file.Close()
		}
		path := filepath.Join(l.dir, fmt.Sprintf("%s-%s.log", l.name, today))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			slog.Error("failed to open audit log", "path", path, "error", err)
			l.buffer = nil
			return
		}
		l.file = f
		l.date = today
	}

	for _, line := range l.buffer {
		fmt.Fprintln(l.file, line)
	}
	l.buffer = nil
}

// Close flushes remaining buffer and closes the file.
func (l *AuditLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.ticker != nil {
		l.ticker.Stop()
		close(l.done)
	}
	l.flushLocked()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// CloseAll flushes and closes all audit logs. Call on process exit.
func CloseAll() {
	logsMu.Lock()
	defer logsMu.Unlock()
	for name, l := range logs {
		l.Close()
		delete(logs, name)
	}
}

// cleanupLoop periodically deletes log files older than maxLogAge.
func cleanupLoop(dir string) {
	for {
		cleanOldLogs(dir, time.Now().Add(-maxLogAge))
		time.Sleep(cleanupInterval)
	}
}

func cleanOldLogs(dir string, cutoff time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err == nil {
				slog.Debug("removed old audit log", "path", path)
			}
		}
	}
}
