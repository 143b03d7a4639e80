package collector

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// maxSessions bounds how many transcript files one poll inspects.
const maxSessions = 20

// archiveThreshold is the transcript length past which a session is listed
// as archived instead of active.
const archiveThreshold = 100

// SessionsCollector summarizes agent session transcripts
// (<workspace>/agents/main/sessions/*.jsonl).
type SessionsCollector struct {
	dir      string
	interval time.Duration
	logger   *logrus.Entry
}

// NewSessionsCollector creates a collector for the sessions directory.
func NewSessionsCollector(workspaceRoot string, interval time.Duration, logger *logrus.Entry) *SessionsCollector {
	if interval == 0 {
		interval = 60 * time.Second
	}
	return &SessionsCollector{
		dir:      filepath.Join(workspaceRoot, "agents", "main", "sessions"),
		interval: interval,
		logger:   logger,
	}
}

// Name returns the collector's name.
func (c *SessionsCollector) Name() string { return "sessions" }

// Run starts the sessions polling loop.
func (c *SessionsCollector) Run(ctx context.Context, updates chan<- Update) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	emit := func() {
		sessions := LoadSessions(c.dir, c.logger)
		select {
		case updates <- Update{Type: UpdateSessions, Source: c.Name(), Payload: sessions}:
		case <-ctx.Done():
		}
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			emit()
		}
	}
}

// LoadSessions reads the newest session transcripts and summarizes each.
// Unreadable or malformed files are skipped.
func LoadSessions(dir string, logger *logrus.Entry) []models.SessionInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []models.SessionInfo{}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jsonl") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > maxSessions {
		names = names[:maxSessions]
	}

	sessions := make([]models.SessionInfo, 0, len(names))
	for _, name := range names {
		info, err := summarizeTranscript(filepath.Join(dir, name))
		if err != nil {
			logger.WithError(err).Debugf("Skipping session file %s", name)
			continue
		}
		sessions = append(sessions, info)
	}
	return sessions
}

func summarizeTranscript(path string) (models.SessionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SessionInfo{}, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return models.SessionInfo{}, os.ErrInvalid
	}

	var first, last struct {
		Timestamp string `json:"timestamp"`
		Model     string `json:"model"`
	}
	_ = json.Unmarshal([]byte(lines[0]), &first)
	_ = json.Unmarshal([]byte(lines[len(lines)-1]), &last)

	status := "active"
	if len(lines) >= archiveThreshold {
		status = "archived"
	}
	model := last.Model
	if model == "" {
		model = "unknown"
	}

	return models.SessionInfo{
		ID:           strings.TrimSuffix(filepath.Base(path), ".jsonl"),
		Started:      first.Timestamp,
		LastActivity: last.Timestamp,
		Messages:     len(lines),
		Model:        model,
		Status:       status,
	}, nil
}
