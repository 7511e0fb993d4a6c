package types

// MappingResult records what happened to one mapping
type MappingResult struct {
	Mapping    Mapping `json:"mapping" yaml:"mapping"`
	SourcePath string  `json:"source_path" yaml:"source_path"`
	TargetPath string  `json:"target_path" yaml:"target_path"`
	Status     Status  `json:"status" yaml:"status"`
	BackupPath string  `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// MCPResult records the enhanced-mode MCP config deployment
type MCPResult struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	Status       Status `json:"status" yaml:"status"`
	BackupPath   string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Replacements int    `json:"replacements" yaml:"replacements"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SyncReport is the outcome of a local sync
type SyncReport struct {
	BackupDir string          `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
	DryRun    bool            `json:"dry_run" yaml:"dry_run"`
	Results   []MappingResult `json:"results" yaml:"results"`
	MCP       *MCPResult      `json:"mcp,omitempty" yaml:"mcp,omitempty"`
}

// Failed counts results that failed
func (r *SyncReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status.IsFailure() {
			n++
		}
	}
	if r.MCP != nil && r.MCP.Status.IsFailure() {
		n++
	}
	return n
}

// HostResult records the propagation to one host
type HostResult struct {
	Host    Host     `json:"host" yaml:"host"`
	Status  Status   `json:"status" yaml:"status"`
	Output  string   `json:"output,omitempty" yaml:"output,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
	Backups []string `json:"backups,omitempty" yaml:"backups,omitempty"`
}

// ToolResult records the install check for one tool
type ToolResult struct {
	Tool    Tool   `json:"tool" yaml:"tool"`
	Status  Status `json:"status" yaml:"status"`
	Binary  string `json:"binary,omitempty" yaml:"binary,omitempty"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// HostInstallResult records an install run on one remote host
type HostInstallResult struct {
	Host    Host         `json:"host" yaml:"host"`
	Manager string       `json:"manager,omitempty" yaml:"manager,omitempty"`
	Status  Status       `json:"status" yaml:"status"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
	Tools   []ToolResult `json:"tools" yaml:"tools"`
}

// GeneratedFile records one config file written by generate
type GeneratedFile struct {
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	Status     Status `json:"status" yaml:"status"`
	BackupPath string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CountFailedHosts counts failed host results
func CountFailedHosts(results []HostResult) int {
	n := 0
	for _, r := range results {
		if r.Status.IsFailure() {
			n++
		}
	}
	return n
}

// CountFailedTools counts failed tool results
func CountFailedTools(results []ToolResult) int {
	n := 0
	for _, r := range results {
		if r.Status.IsFailure() {
			n++
		}
	}
	return n
}

// CountFailedInstalls counts hosts whose install run failed
func CountFailedInstalls(results []HostInstallResult) int {
	n := 0
	for _, r := range results {
		if r.Status.IsFailure() {
			n++
		}
	}
	return n
}
