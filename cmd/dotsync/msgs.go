package dotsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep dotfiles in sync across machines"
	MsgSyncShort       = "Link dotfiles locally and push them to remote hosts"
	MsgPushShort       = "Push dotfiles to remote hosts and sync them there"
	MsgInstallShort    = "Install the configured command line tools"
	MsgMCPShort        = "Debug the desktop assistant's MCP servers"
	MsgMCPServersShort = "List the configured MCP servers"
	MsgMCPPathShort    = "Print the MCP config file path"
	MsgMCPValidShort   = "Check the MCP config for problems"
	MsgMCPFixShort     = "Rewrite home directory paths in the MCP config"
	MsgMCPLogsShort    = "Show or follow MCP server logs"
	MsgMCPGrepShort    = "Search MCP server logs"
	MsgMCPCLIShort     = "Run the assistant's MCP command line"
	MsgMCPCLILong      = "Cli runs the command in mcp.cli (\"claude mcp\" by default) with the given\narguments, \"list\" when none are given. Put flags meant for it after --."
	MsgTemplatesShort  = "Manage AI assistant instruction templates"
	MsgTplListShort    = "List available templates"
	MsgTplShowShort    = "Render a template"
	MsgTplInstallShort = "Write a template into a project"
	MsgAnalyzeShort    = "Report what the shell and tmux configuration contain"
	MsgGenerateShort   = "Write zsh, tmux and starship configs into the dotfiles checkout"
	MsgConfigShort     = "Inspect the effective configuration"
	MsgConfigShowShort = "Print the merged configuration as TOML"
	MsgConfigPathShort = "List the configuration files consulted"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgVersionFormat      = "dotsync %s (commit %s, built %s)\n"
	MsgTemplateWritten    = "Wrote %s"
	MsgTemplateWouldWrite = "Would write %s"
	MsgDotfilesRoot       = "dotfiles root: %s"
	MsgFixWouldRewrite    = "would rewrite %d paths in %s"
	MsgFixRewrote         = "rewrote %d paths in %s"
	MsgBackupIn           = "backup in %s"
	MsgFollowing          = "following %s (Ctrl-C to stop)\n"
	MsgManWritten         = "Man pages written to %s"
	MsgNoHosts            = "No remote hosts configured, skipping propagation"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrSyncFailed  = "%d of %d mappings failed"
	MsgErrPushFailed  = "%d of %d hosts failed"
	MsgErrToolsFailed = "%d of %d tools failed"
	MsgErrHostsFailed = "installing failed on %d of %d hosts"
	MsgErrFilesFailed = "%d of %d files failed"
	MsgErrNoCommand   = "no command specified"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagLocal     = "Only sync this machine, skip remote hosts"
	MsgFlagEnhanced  = "Also deploy the MCP configuration"
	MsgFlagYes       = "Do not ask before pushing to each host"
	MsgFlagHost      = "Limit propagation to this host (repeatable)"
	MsgFlagTransport = "Remote transport: rsync or native"
	MsgFlagCheck     = "Only report missing tools, install nothing"
	MsgFlagOnHost    = "Install on this remote host instead of locally (repeatable)"
	MsgFlagFrom      = "Home directory prefix to replace (repeatable, detected when omitted)"
	MsgFlagLines     = "Number of lines to show"
	MsgFlagFollow    = "Keep printing lines as they are written"
	MsgFlagIgnore    = "Match case-insensitively"
	MsgFlagForce     = "Overwrite an existing file"
	MsgFlagList      = "List log files instead of showing one"
	MsgFlagData      = "Report format: json or yaml"
	MsgFlagDefaults  = "Print the built-in defaults instead of the merged configuration"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/push-long.txt
	msgPushLongRaw string
	MsgPushLong    = strings.TrimSpace(msgPushLongRaw)

	//go:embed msgs/push-example.txt
	msgPushExampleRaw string
	MsgPushExample    = strings.TrimRight(msgPushExampleRaw, "\n")

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/mcp-long.txt
	msgMCPLongRaw string
	MsgMCPLong    = strings.TrimSpace(msgMCPLongRaw)

	//go:embed msgs/templates-long.txt
	msgTemplatesLongRaw string
	MsgTemplatesLong    = strings.TrimSpace(msgTemplatesLongRaw)

	//go:embed msgs/analyze-long.txt
	msgAnalyzeLongRaw string
	MsgAnalyzeLong    = strings.TrimSpace(msgAnalyzeLongRaw)

	//go:embed msgs/generate-long.txt
	msgGenerateLongRaw string
	MsgGenerateLong    = strings.TrimSpace(msgGenerateLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw) + "\n"

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
