package installer_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/installer"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tools = []types.Tool{
	{Name: "ripgrep", Binaries: []string{"rg"}},
	{Name: "fd", Binaries: []string{"fd", "fdfind"}, Packages: map[string]string{"apt-get": "fd-find"}},
	{Name: "lazygit", Packages: map[string]string{"apt-get": "-"}},
	{Name: "jq"},
}

func TestDetect(t *testing.T) {
	linux := []string{"apt-get", "dnf", "pacman"}

	tests := []struct {
		name     string
		binaries []string
		opts     installer.DetectOptions
		want     installer.Manager
	}{
		{"darwin brew", []string{"brew"}, installer.DetectOptions{GOOS: "darwin"}, installer.Manager{Name: "brew"}},
		{"linux first candidate wins", []string{"dnf", "pacman"}, installer.DetectOptions{GOOS: "linux", Candidates: linux}, installer.Manager{Name: "dnf"}},
		{"linux sudo when available", []string{"apt-get", "sudo"}, installer.DetectOptions{GOOS: "linux", Candidates: linux, UseSudo: true}, installer.Manager{Name: "apt-get", Sudo: true}},
		{"linux root skips sudo", []string{"apt-get", "sudo"}, installer.DetectOptions{GOOS: "linux", Candidates: linux, UseSudo: true, IsRoot: true}, installer.Manager{Name: "apt-get"}},
		{"linux no sudo binary", []string{"apt-get"}, installer.DetectOptions{GOOS: "linux", Candidates: linux, UseSudo: true}, installer.Manager{Name: "apt-get"}},
		{"linuxbrew fallback", []string{"brew"}, installer.DetectOptions{GOOS: "linux", Candidates: linux}, installer.Manager{Name: "brew"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := installer.Detect(testutil.NewFakeRunner(tt.binaries...), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectNoManager(t *testing.T) {
	for _, goos := range []string{"darwin", "linux", "plan9"} {
		_, err := installer.Detect(testutil.NewFakeRunner(), installer.DetectOptions{GOOS: goos, Candidates: []string{"apt-get"}})
		require.Error(t, err, goos)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoPackageManager), goos)
	}
}

func TestInstallCmd(t *testing.T) {
	assert.Equal(t, "brew install ripgrep", installer.Manager{Name: "brew"}.InstallCmd("ripgrep").String())
	assert.Equal(t, "sudo apt-get install -y fd-find", installer.Manager{Name: "apt-get", Sudo: true}.InstallCmd("fd-find").String())
	assert.Equal(t, "pacman -S --noconfirm --needed jq", installer.Manager{Name: "pacman"}.InstallCmd("jq").String())
	assert.Equal(t, "apk add jq", installer.Manager{Name: "apk"}.InstallCmd("jq").String())
}

func TestRunInstallsOnlyMissing(t *testing.T) {
	fake := testutil.NewFakeRunner("fdfind")
	results := installer.New(installer.Options{
		Runner:  fake,
		Manager: installer.Manager{Name: "apt-get"},
		Tools:   tools,
	}).Run(context.Background())

	require.Len(t, results, 4)
	assert.Equal(t, types.StatusInstalled, results[0].Status)
	assert.Equal(t, "ripgrep", results[0].Package)
	assert.Equal(t, types.StatusPresent, results[1].Status, "fdfind counts as fd")
	assert.Equal(t, "fdfind", results[1].Binary)
	assert.Equal(t, types.StatusUnavailable, results[2].Status)
	assert.Equal(t, types.StatusInstalled, results[3].Status)

	assert.Equal(t, []string{"apt-get install -y ripgrep", "apt-get install -y jq"}, fake.CommandLines())
}

func TestRunFailureIsPerTool(t *testing.T) {
	fake := testutil.NewFakeRunner().Respond("brew install ripgrep", "Error: no bottle", 1)
	results := installer.New(installer.Options{
		Runner:  fake,
		Manager: installer.Manager{Name: "brew"},
		Tools:   tools,
	}).Run(context.Background())

	assert.Equal(t, types.StatusFailed, results[0].Status)
	assert.Equal(t, "Error: no bottle", results[0].Output)
	assert.Equal(t, types.StatusInstalled, results[1].Status)
	assert.Equal(t, "fd", results[1].Package)
	assert.Equal(t, types.StatusInstalled, results[2].Status, "brew has lazygit")
	assert.Equal(t, 1, types.CountFailedTools(results))
}

func TestRunCheckOnlyAndDryRun(t *testing.T) {
	fake := testutil.NewFakeRunner("jq")

	check := installer.New(installer.Options{Runner: fake, Manager: installer.Manager{Name: "brew"}, Tools: tools, CheckOnly: true}).Run(context.Background())
	assert.Equal(t, types.StatusSkipped, check[0].Status)
	assert.Equal(t, types.StatusPresent, check[3].Status)

	dry := installer.New(installer.Options{Runner: fake, Manager: installer.Manager{Name: "brew"}, Tools: tools, DryRun: true}).Run(context.Background())
	assert.Equal(t, types.StatusDryRun, dry[0].Status)
	assert.Equal(t, "brew install ripgrep", dry[0].Command)

	assert.Empty(t, fake.CommandLines())
}

func TestPartition(t *testing.T) {
	present, missing := installer.Partition(testutil.NewFakeRunner("rg", "jq"), tools)
	assert.Equal(t, []string{"ripgrep", "jq"}, present)
	assert.Equal(t, []string{"fd", "lazygit"}, missing)
}
