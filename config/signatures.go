package config

// SignatureRule is one ordered pattern rule for the classifier. Rules within
// a table are evaluated top to bottom; the first matching rule wins.
//
// A rule matches a directory (pipelines, custom modules) or a file (agents)
// by glob on its base name. If ConfigFile is set, the entry must additionally
// contain a child whose name matches that glob.
type SignatureRule struct {
	Name       string `yaml:"name"`
	Match      string `yaml:"match"`
	ConfigFile string `yaml:"config_file,omitempty"`
	Class      string `yaml:"classification"`
	Icon       string `yaml:"icon,omitempty"`
	Color      string `yaml:"color,omitempty"`
}

// SignatureConfig holds the per-kind pattern tables. The cross-kind priority
// is fixed in the classifier: pipeline > agent > skill membership > custom
// module. Tables are static configuration, loaded once at startup.
type SignatureConfig struct {
	Pipelines     []SignatureRule `yaml:"pipelines"`
	Agents        []SignatureRule `yaml:"agents"`
	CustomModules []SignatureRule `yaml:"custom_modules"`

	// SkillsRoot is the directory name under the workspace root whose
	// immediate child directories are classified as skills.
	SkillsRoot string `yaml:"skills_root"`

	// StageNames is the vocabulary of pipeline stage directory names.
	StageNames []string `yaml:"stage_names"`
}

func (s *SignatureConfig) applyDefaults() {
	if s.Pipelines == nil {
		s.Pipelines = []SignatureRule{
			{Name: "pipeline-suffix", Match: "*-pipeline", Class: "workflow", Icon: "workflow", Color: "#0ea5e9"},
			{Name: "pipeline-prefix", Match: "pipeline-*", Class: "workflow", Icon: "workflow", Color: "#0ea5e9"},
			{Name: "flow-suffix", Match: "*-flow", Class: "dataflow", Icon: "git-branch", Color: "#8b5cf6"},
			{Name: "pipeline-config", Match: "*", ConfigFile: "pipeline.yml", Class: "configured", Icon: "settings", Color: "#f59e0b"},
		}
	}
	if s.Agents == nil {
		s.Agents = []SignatureRule{
			{Name: "agent-yaml", Match: "*.agent.yml", Class: "general", Icon: "bot", Color: "#6366f1"},
			{Name: "agent-yaml-long", Match: "*.agent.yaml", Class: "general", Icon: "bot", Color: "#6366f1"},
			{Name: "agent-json", Match: "*.agent.json", Class: "general", Icon: "bot", Color: "#6366f1"},
			{Name: "agent-config", Match: "agent.yml", Class: "general", Icon: "bot", Color: "#6366f1"},
		}
	}
	if s.CustomModules == nil {
		s.CustomModules = []SignatureRule{
			{Name: "module-prefix", Match: "mod-*", Class: "module"},
			{Name: "custom-prefix", Match: "custom-*", Class: "module"},
		}
	}
	if s.SkillsRoot == "" {
		s.SkillsRoot = "skills"
	}
	if s.StageNames == nil {
		s.StageNames = []string{
			"ingest", "extract", "transform", "enrich",
			"analyze", "load", "publish", "export",
		}
	}
}
