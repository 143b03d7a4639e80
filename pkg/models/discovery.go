// Package models defines the JSON value types shared by the dashd API,
// the discovery engine, and the realtime channel protocol.
package models

import "time"

// Activity status values for pipelines, agents and custom modules.
const (
	StatusActive  = "active"
	StatusIdle    = "idle"
	StatusUnknown = "unknown"
)

// PipelineRecord describes one discovered pipeline directory.
// Identity is the directory path.
type PipelineRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	Color   string   `json:"color"`
	Path    string   `json:"path"`
	Stages  []string `json:"stages"`
	Metrics []string `json:"metrics"`
	Status  string   `json:"status"`
	Source  string   `json:"source"`
}

// AgentRecord describes one discovered agent configuration file.
// Identity is the config file path.
type AgentRecord struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	ConfigPath   string   `json:"config_path"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status"`
	Source       string   `json:"source"`
}

// SkillRecord describes one directory under the skills root.
// Identity is the directory name. The full README body is never stored here;
// it is loaded lazily through the REST API.
type SkillRecord struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Category    string `json:"category"`
	HasReadme   bool   `json:"has_readme"`
	Description string `json:"description"`
}

// CustomModuleRecord describes a workspace module matched by a
// custom-module signature.
type CustomModuleRecord struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// WorkspaceSnapshot is one complete, immutable result of a discovery scan.
// Once built it is never mutated; a rescan produces a wholly new value.
type WorkspaceSnapshot struct {
	DetectedAt    time.Time            `json:"detected_at"`
	WorkspaceRoot string               `json:"workspace_root"`
	Pipelines     []PipelineRecord     `json:"pipelines"`
	Agents        []AgentRecord        `json:"agents"`
	Skills        []SkillRecord        `json:"skills"`
	CustomModules []CustomModuleRecord `json:"custom_modules"`
	Metrics       map[string]int       `json:"metrics"`
}

// SnapshotDelta is the bounded change summary published on the realtime
// channel after each successful rescan. Identity lists are capped; clients
// fetch full records over REST.
type SnapshotDelta struct {
	DetectedAt time.Time           `json:"detected_at"`
	Added      map[string][]string `json:"added"`
	Removed    map[string][]string `json:"removed"`
	Truncated  bool                `json:"truncated,omitempty"`
	Metrics    map[string]int      `json:"metrics"`
}
