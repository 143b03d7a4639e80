package discovery

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Builder aggregates classified observations into one immutable
// WorkspaceSnapshot.
type Builder struct {
	classifier *Classifier
	logger     *logrus.Entry
}

// NewBuilder creates a snapshot builder on top of a classifier.
func NewBuilder(classifier *Classifier, logger *logrus.Entry) *Builder {
	return &Builder{classifier: classifier, logger: logger}
}

// Build consumes a full observation sequence and emits a snapshot.
// Observations with a duplicate identity replace the earlier record in
// place, so the builder is idempotent against defensive re-walks. Kinds
// with zero findings yield empty, non-nil sequences.
func (b *Builder) Build(root string, observations []Observation) *models.WorkspaceSnapshot {
	detectedAt := time.Now()

	snap := &models.WorkspaceSnapshot{
		DetectedAt:    detectedAt,
		WorkspaceRoot: root,
		Pipelines:     []models.PipelineRecord{},
		Agents:        []models.AgentRecord{},
		Skills:        []models.SkillRecord{},
		CustomModules: []models.CustomModuleRecord{},
	}

	pipelineIdx := make(map[string]int)
	agentIdx := make(map[string]int)
	skillIdx := make(map[string]int)
	moduleIdx := make(map[string]int)

	// First line of each README, keyed by containing directory. Attached to
	// skill records in a second pass since the README file observation may
	// arrive after its directory.
	readmeByDir := make(map[string]string)

	for _, obs := range observations {
		if !obs.Dir && strings.HasPrefix(strings.ToLower(obs.Name), "readme") {
			if line := firstLine(obs.Excerpt); line != "" {
				readmeByDir[obs.Parent] = line
			}
		}

		cls := b.classifier.Classify(obs)
		switch cls.Kind {
		case KindPipeline:
			record := b.pipelineRecord(obs, cls, detectedAt)
			upsert(&snap.Pipelines, pipelineIdx, record.ID, record)
		case KindAgent:
			record := b.agentRecord(obs, cls, detectedAt)
			upsert(&snap.Agents, agentIdx, record.ConfigPath, record)
		case KindSkill:
			record := b.skillRecord(obs, cls)
			upsert(&snap.Skills, skillIdx, record.Name, record)
		case KindCustomModule:
			record := models.CustomModuleRecord{
				Name:   obs.Name,
				Type:   cls.Class,
				Status: b.classifier.Activity(obs.MTime, detectedAt),
			}
			upsert(&snap.CustomModules, moduleIdx, record.Name, record)
		}
	}

	for i := range snap.Skills {
		if desc, ok := readmeByDir[snap.Skills[i].Path]; ok {
			snap.Skills[i].HasReadme = true
			snap.Skills[i].Description = desc
		}
	}

	snap.Metrics = summarize(snap)
	return snap
}

func (b *Builder) pipelineRecord(obs Observation, cls Classification, now time.Time) models.PipelineRecord {
	return models.PipelineRecord{
		ID:      obs.Path,
		Name:    displayName(obs.Name),
		Icon:    cls.Icon,
		Color:   cls.Color,
		Path:    obs.Path,
		Stages:  b.classifier.Stages(obs.Children),
		Metrics: b.classifier.MetricNames(obs.Children),
		Status:  b.classifier.Activity(obs.MTime, now),
		Source:  cls.Rule,
	}
}

func (b *Builder) agentRecord(obs Observation, cls Classification, now time.Time) models.AgentRecord {
	record := models.AgentRecord{
		Name:         agentStem(obs.Name),
		Type:         cls.Class,
		ConfigPath:   obs.Path,
		Capabilities: []string{},
		Status:       b.classifier.Activity(obs.MTime, now),
		Source:       cls.Rule,
	}

	if len(obs.Excerpt) > 0 {
		var meta struct {
			Name         string   `yaml:"name" json:"name"`
			Type         string   `yaml:"type" json:"type"`
			Capabilities []string `yaml:"capabilities" json:"capabilities"`
		}
		if err := yaml.Unmarshal(obs.Excerpt, &meta); err != nil {
			b.logger.WithError(err).Debugf("Unparseable agent config: %s", obs.Path)
		} else {
			if meta.Name != "" {
				record.Name = meta.Name
			}
			if meta.Type != "" {
				record.Type = meta.Type
			}
			if meta.Capabilities != nil {
				record.Capabilities = meta.Capabilities
			}
		}
	}
	return record
}

func (b *Builder) skillRecord(obs Observation, cls Classification) models.SkillRecord {
	record := models.SkillRecord{
		Name:     obs.Name,
		Path:     obs.Path,
		Category: cls.Class,
	}
	for _, child := range obs.Children {
		if strings.HasPrefix(strings.ToLower(child), "readme") {
			record.HasReadme = true
			break
		}
	}
	return record
}

// upsert appends a record or replaces the earlier one at its original
// position when the identity was already seen.
func upsert[T any](records *[]T, index map[string]int, identity string, record T) {
	if pos, seen := index[identity]; seen {
		(*records)[pos] = record
		return
	}
	index[identity] = len(*records)
	*records = append(*records, record)
}

func summarize(snap *models.WorkspaceSnapshot) map[string]int {
	metrics := map[string]int{
		"pipelines_total":      len(snap.Pipelines),
		"agents_total":         len(snap.Agents),
		"skills_total":         len(snap.Skills),
		"custom_modules_total": len(snap.CustomModules),
	}
	for _, p := range snap.Pipelines {
		if p.Status == models.StatusActive {
			metrics["pipelines_active"]++
		}
	}
	for _, a := range snap.Agents {
		if a.Status == models.StatusActive {
			metrics["agents_active"]++
		}
	}
	return metrics
}

// displayName turns a directory name into a human-readable label.
func displayName(name string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}

// agentStem strips the agent config suffixes from a file name.
func agentStem(name string) string {
	stem := name
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	stem = strings.TrimSuffix(stem, ".agent")
	return stem
}

func firstLine(excerpt []byte) string {
	text := string(excerpt)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "# ")
	return strings.TrimSpace(text)
}
