package generate

import (
	"sort"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/analyze"
)

// Pair is one name/value line in a generated file
type Pair struct {
	Key   string
	Value string
}

// ZshData feeds the zshrc template
type ZshData struct {
	Plugins []string
	Exports []Pair
	Aliases []Pair
}

// TmuxData feeds the tmux.conf template
type TmuxData struct {
	Options  []Pair
	Bindings []Pair
}

// Plan is everything the templates need
type Plan struct {
	Zsh  ZshData
	Tmux TmuxData
}

// maxRecommendedPlugins and minPluginScore bound what is added on top of
// the plugins already in use
const (
	maxRecommendedPlugins = 15
	minPluginScore        = 500
)

// PluginScores ranks well-known oh-my-zsh plugins
var PluginScores = map[string]int{
	"zsh-autosuggestions":     2500,
	"zsh-syntax-highlighting": 2400,
	"fzf":                     2200,
	"zsh-completions":         1800,
	"thefuck":                 1600,
	"z":                       1500,
	"autojump":                1300,
	"extract":                 1200,
	"docker":                  1100,
	"git":                     1000,
	"kubectl":                 900,
	"nvm":                     800,
	"pyenv":                   700,
}

// RecommendedAliases replace any existing alias of the same name
var RecommendedAliases = map[string]string{
	"ll":   "ls -alF",
	"la":   "ls -A",
	"l":    "ls -CF",
	"..":   "cd ..",
	"...":  "cd ../..",
	"g":    "git",
	"gc":   "git commit",
	"gp":   "git push",
	"gl":   "git pull",
	"gst":  "git status",
	"gd":   "git diff",
	"gco":  "git checkout",
	"gcb":  "git checkout -b",
	"k":    "kubectl",
	"d":    "docker",
	"dc":   "docker-compose",
	"vim":  "nvim",
	"cat":  "bat",
	"ls":   "eza",
	"find": "fd",
	"grep": "rg",
	"top":  "btop",
}

// defaultExports keep their order; current values override them
var defaultExports = []Pair{
	{"LC_ALL", "en_US.UTF-8"},
	{"LANG", "en_US.UTF-8"},
	{"EDITOR", "vim"},
	{"VISUAL", "$EDITOR"},
	{"PAGER", "less"},
	{"LESS", "-FRX"},
}

var recommendedTmuxOptions = []Pair{
	{"prefix", "C-a"},
	{"base-index", "1"},
	{"mouse", "on"},
	{"history-limit", "50000"},
	{"default-terminal", "screen-256color"},
	{"status-position", "bottom"},
	{"renumber-windows", "on"},
}

var recommendedTmuxBindings = []Pair{
	{"C-a", "send-prefix"},
	{"|", `split-window -h -c "#{pane_current_path}"`},
	{"-", `split-window -v -c "#{pane_current_path}"`},
	{"r", `source-file ~/.tmux.conf \; display-message "Config reloaded"`},
	{"m", `set -g mouse on \; display "Mouse: ON"`},
	{"M", `set -g mouse off \; display "Mouse: OFF"`},
}

// Names the templates write themselves. Reading a generated file back
// must not duplicate them.
var (
	templateAliases  = set("zshrc", "tmuxrc", "gitroot", "myip")
	templateExports  = set("ZSH", "PATH", "FZF_DEFAULT_COMMAND", "FZF_CTRL_T_COMMAND", "FZF_ALT_C_COMMAND", "FZF_DEFAULT_OPTS")
	templateOptions  = set("status-style", "status-left-length", "status-right", "@plugin", "@continuum-restore", "@resurrect-capture-pane-contents")
	templateBindings = set("h", "j", "k", "l", "H", "J", "K", "L", "C-h", "C-l", "Tab", "copy-mode-vi")
)

// NewPlan merges the current configs with the recommendations
func NewPlan(zsh analyze.ZshReport, tmux analyze.TmuxReport) *Plan {
	return &Plan{
		Zsh: ZshData{
			Plugins: mergePlugins(zsh.Plugins),
			Exports: mergeExports(zsh.Exports),
			Aliases: mergeAliases(zsh.Aliases),
		},
		Tmux: TmuxData{
			Options:  mergeOrdered(recommendedTmuxOptions, tmux.Options, templateOptions, quoteTmux),
			Bindings: mergeOrdered(recommendedTmuxBindings, tmux.Bindings, templateBindings, nil),
		},
	}
}

// mergePlugins keeps the current plugins in order and appends the best
// scored recommendations that are missing
func mergePlugins(current []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range current {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	ranked := make([]string, 0, len(PluginScores))
	for p := range PluginScores {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := PluginScores[ranked[i]], PluginScores[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > maxRecommendedPlugins {
		ranked = ranked[:maxRecommendedPlugins]
	}
	for _, p := range ranked {
		if !seen[p] && PluginScores[p] > minPluginScore {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func mergeExports(current map[string]string) []Pair {
	out := make([]Pair, 0, len(defaultExports)+len(current))
	known := map[string]bool{}
	for _, d := range defaultExports {
		known[d.Key] = true
		if v, ok := current[d.Key]; ok {
			d.Value = v
		}
		out = append(out, d)
	}
	for _, k := range sortedKeys(current) {
		if !known[k] && !templateExports[k] {
			out = append(out, Pair{k, current[k]})
		}
	}
	return out
}

func mergeAliases(current map[string]string) []Pair {
	merged := map[string]string{}
	for k, v := range current {
		if !templateAliases[k] {
			merged[k] = v
		}
	}
	for k, v := range RecommendedAliases {
		merged[k] = v
	}
	out := make([]Pair, 0, len(merged))
	for _, k := range sortedKeys(merged) {
		out = append(out, Pair{k, merged[k]})
	}
	return out
}

// mergeOrdered returns the recommendations followed by current entries
// they do not cover, sorted by key
func mergeOrdered(recommended []Pair, current map[string]string, skip map[string]bool, format func(string) string) []Pair {
	out := make([]Pair, 0, len(recommended)+len(current))
	known := map[string]bool{}
	for _, r := range recommended {
		known[r.Key] = true
		out = append(out, r)
	}
	for _, k := range sortedKeys(current) {
		if known[k] || skip[k] {
			continue
		}
		v := current[k]
		if format != nil {
			v = format(v)
		}
		out = append(out, Pair{k, v})
	}
	return out
}

// quoteTmux single-quotes option values the tmux parser would split
func quoteTmux(v string) string {
	if strings.ContainsAny(v, " \t#;\"'") {
		return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
	}
	return v
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
