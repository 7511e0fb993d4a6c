package types

// Status is the outcome of one item in a run
type Status string

const (
	StatusLinked        Status = "linked"
	StatusAlreadyLinked Status = "already_linked"
	StatusBackedUp      Status = "backed_up"
	StatusMissingSource Status = "missing_source"
	StatusFailed        Status = "failed"
	StatusSkipped       Status = "skipped"
	StatusInstalled     Status = "installed"
	StatusPresent       Status = "present"
	StatusUnavailable   Status = "unavailable"
	StatusDeclined      Status = "declined"
	StatusSynced        Status = "synced"
	StatusDryRun        Status = "dry_run"
	StatusWritten       Status = "written"
	StatusUnchanged     Status = "unchanged"
	StatusDone          Status = "done"
)

// IsFailure reports whether the status should make the command exit non-zero
func (s Status) IsFailure() bool {
	return s == StatusFailed
}
