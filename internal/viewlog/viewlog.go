package viewlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Event is one recorded client view.
type Event struct {
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Preview   bool      `json:"preview"`
	Timestamp time.Time `json:"timestamp"`
}

// Log appends client view events as JSON lines.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Log{f: f}, nil
}

func (l *Log) Append(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err = l.f.Write(line)
	return err
}

func (l *Log) Close() error {
	return l.f.Close()
}
