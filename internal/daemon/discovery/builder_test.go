package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/openclaw/dashd/logging"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/openclaw/dashd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAndBuild(t *testing.T, ws *testutil.Workspace) *models.WorkspaceSnapshot {
	t.Helper()
	logger := logging.NewTestLogger()
	cfg := testConfig(t, ws.Root)

	scanner, err := NewScanner(cfg, logger)
	require.NoError(t, err)
	observations, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	builder := NewBuilder(NewClassifier(cfg, logger), logger)
	return builder.Build(ws.Root, observations)
}

func TestBuildEndToEnd(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	pipe := ws.AddPipeline("hydro-pipeline", "ingest", "transform", "publish")
	ws.AddFile("hydro-pipeline/latency.metrics.json", "{}")
	ws.Touch(pipe, time.Now())
	ws.AddAgent("agents/researcher.agent.yml", "name: researcher\ntype: analysis\ncapabilities:\n  - search\n  - summarize\n")
	ws.AddSkill("web-scraper", "# Web Scraper\nFetches pages.")
	ws.AddDir("mod-report")

	snap := scanAndBuild(t, ws)

	require.Len(t, snap.Pipelines, 1)
	p := snap.Pipelines[0]
	assert.Equal(t, "hydro pipeline", p.Name)
	assert.Equal(t, []string{"ingest", "transform", "publish"}, p.Stages)
	assert.Equal(t, []string{"latency"}, p.Metrics)
	assert.Equal(t, models.StatusActive, p.Status)

	require.Len(t, snap.Agents, 1)
	a := snap.Agents[0]
	assert.Equal(t, "researcher", a.Name)
	assert.Equal(t, "analysis", a.Type)
	assert.Equal(t, []string{"search", "summarize"}, a.Capabilities)

	require.Len(t, snap.Skills, 1)
	s := snap.Skills[0]
	assert.Equal(t, "web-scraper", s.Name)
	assert.Equal(t, "web", s.Category)
	assert.True(t, s.HasReadme)
	assert.Equal(t, "Web Scraper", s.Description)

	require.Len(t, snap.CustomModules, 1)
	assert.Equal(t, "mod-report", snap.CustomModules[0].Name)

	assert.Equal(t, 1, snap.Metrics["pipelines_total"])
	assert.Equal(t, 1, snap.Metrics["agents_total"])
	assert.Equal(t, 1, snap.Metrics["skills_total"])
	assert.Equal(t, 1, snap.Metrics["custom_modules_total"])
	assert.Equal(t, 1, snap.Metrics["pipelines_active"])
}

func TestBuildEmptyWorkspace(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	snap := scanAndBuild(t, ws)

	assert.NotNil(t, snap.Pipelines)
	assert.NotNil(t, snap.Agents)
	assert.NotNil(t, snap.Skills)
	assert.NotNil(t, snap.CustomModules)
	assert.Empty(t, snap.Pipelines)
	assert.Equal(t, 0, snap.Metrics["pipelines_total"])
	assert.Equal(t, ws.Root, snap.WorkspaceRoot)
	assert.False(t, snap.DetectedAt.IsZero())
}

func TestBuildIdempotent(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	old := time.Now().Add(-48 * time.Hour)
	pipe := ws.AddPipeline("etl-pipeline", "extract", "load")
	ws.Touch(pipe, old)
	ws.AddSkill("summarize", "Condenses text.")

	first := scanAndBuild(t, ws)
	second := scanAndBuild(t, ws)

	first.DetectedAt = time.Time{}
	second.DetectedAt = time.Time{}
	assert.Equal(t, first, second)
}

func TestBuildDeduplicatesByIdentity(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.AddDir("mod-report")
	logger := logging.NewTestLogger()
	cfg := testConfig(t, ws.Root)

	scanner, err := NewScanner(cfg, logger)
	require.NoError(t, err)
	observations, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	// Defensive re-walks can surface the same entry twice; the later
	// observation must replace the earlier record in place.
	doubled := append(append([]Observation{}, observations...), observations...)

	builder := NewBuilder(NewClassifier(cfg, logger), logger)
	snap := builder.Build(ws.Root, doubled)
	assert.Len(t, snap.CustomModules, 1)
	assert.Equal(t, 1, snap.Metrics["custom_modules_total"])
}

func TestBuildSkillWithoutReadme(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.AddSkill("parser", "")

	snap := scanAndBuild(t, ws)
	require.Len(t, snap.Skills, 1)
	assert.False(t, snap.Skills[0].HasReadme)
	assert.Empty(t, snap.Skills[0].Description)
}

func TestAgentStemAndDisplayName(t *testing.T) {
	assert.Equal(t, "researcher", agentStem("researcher.agent.yml"))
	assert.Equal(t, "agent", agentStem("agent.yml"))
	assert.Equal(t, "data loader", displayName("data_loader"))
}
