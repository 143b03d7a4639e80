package discovery

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// Kind is the classification category of an observation.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindPipeline
	KindAgent
	KindSkill
	KindCustomModule
)

// Classification is the result of applying the signature tables to one
// observation.
type Classification struct {
	Kind  Kind
	Class string // pipeline kind, agent type, module type, or skill category
	Rule  string // name of the signature that matched
	Icon  string
	Color string
}

// Classifier applies the ordered signature tables to observations. It is a
// pure function of its configuration and inputs; the priority order across
// kinds is fixed: pipeline > agent > skill-root membership > custom module.
type Classifier struct {
	signatures config.SignatureConfig
	skillsRoot string // absolute path of the skills root directory
	threshold  time.Duration
	logger     *logrus.Entry
}

// NewClassifier builds a classifier from static signature configuration.
func NewClassifier(cfg *config.Config, logger *logrus.Entry) *Classifier {
	return &Classifier{
		signatures: cfg.Signatures,
		skillsRoot: filepath.Join(cfg.WorkspaceRoot, cfg.Signatures.SkillsRoot),
		threshold:  cfg.Discovery.ActiveThreshold(),
		logger:     logger,
	}
}

// Classify returns the first matching classification for an observation.
// Ambiguity across kinds is resolved by the fixed priority order and only
// logged at debug level.
func (c *Classifier) Classify(obs Observation) Classification {
	var matches []Classification

	if obs.Dir {
		if rule, ok := matchRules(c.signatures.Pipelines, obs); ok {
			matches = append(matches, Classification{
				Kind: KindPipeline, Class: rule.Class, Rule: rule.Name,
				Icon: rule.Icon, Color: rule.Color,
			})
		}
		if obs.Parent == c.skillsRoot {
			matches = append(matches, Classification{
				Kind: KindSkill, Class: skillCategory(obs.Name), Rule: "skills-root",
			})
		}
		if rule, ok := matchRules(c.signatures.CustomModules, obs); ok {
			matches = append(matches, Classification{
				Kind: KindCustomModule, Class: rule.Class, Rule: rule.Name,
			})
		}
	} else {
		if rule, ok := matchRules(c.signatures.Agents, obs); ok {
			matches = append(matches, Classification{
				Kind: KindAgent, Class: rule.Class, Rule: rule.Name,
				Icon: rule.Icon, Color: rule.Color,
			})
		}
	}

	if len(matches) == 0 {
		return Classification{Kind: KindUnrecognized}
	}
	if len(matches) > 1 {
		c.logger.Debugf("Multiple signatures matched %s, keeping %q", obs.Path, matches[0].Rule)
	}
	return matches[0]
}

// Activity derives the activity status from an observation mtime, relative
// to the reference time of the scan.
func (c *Classifier) Activity(mtime, now time.Time) string {
	if mtime.IsZero() {
		return models.StatusUnknown
	}
	if now.Sub(mtime) <= c.threshold {
		return models.StatusActive
	}
	return models.StatusIdle
}

// Stages returns the pipeline stage names among a directory's children,
// in the order of the configured stage vocabulary.
func (c *Classifier) Stages(children []string) []string {
	present := make(map[string]bool, len(children))
	for _, child := range children {
		present[child] = true
	}
	stages := []string{}
	for _, stage := range c.signatures.StageNames {
		if present[stage] {
			stages = append(stages, stage)
		}
	}
	return stages
}

// MetricNames returns metric names derived from *.metrics.json children.
func (c *Classifier) MetricNames(children []string) []string {
	metrics := []string{}
	for _, child := range children {
		if strings.HasSuffix(child, ".metrics.json") {
			metrics = append(metrics, strings.TrimSuffix(child, ".metrics.json"))
		}
	}
	return metrics
}

// matchRules evaluates an ordered rule table against an observation.
// The first rule whose name glob matches, and whose config_file requirement
// (if any) is satisfied by a child entry, wins.
func matchRules(rules []config.SignatureRule, obs Observation) (config.SignatureRule, bool) {
	for _, rule := range rules {
		matched, err := path.Match(rule.Match, obs.Name)
		if err != nil || !matched {
			continue
		}
		if rule.ConfigFile != "" && !hasChildMatching(obs.Children, rule.ConfigFile) {
			continue
		}
		return rule, true
	}
	return config.SignatureRule{}, false
}

func hasChildMatching(children []string, pattern string) bool {
	for _, child := range children {
		if matched, err := path.Match(pattern, child); err == nil && matched {
			return true
		}
	}
	return false
}

// skillCategory derives a category from the skill directory name: the prefix
// before the first dash, or "general" for single-token names.
func skillCategory(name string) string {
	if idx := strings.Index(name, "-"); idx > 0 {
		return name[:idx]
	}
	return "general"
}
