package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *DashError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *DashError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// WorkspaceUnavailable creates a scan-fatal workspace error. The scheduler
// retains the previous snapshot when it sees this code.
func WorkspaceUnavailable(root string, err error) *DashError {
	return Wrap(err, ErrCodeWorkspaceUnavailable,
		fmt.Sprintf("workspace root not available: %s", root)).
		WithDetail("root", root)
}

// SubtreeUnreadable creates a recoverable scan error for a skipped subtree.
func SubtreeUnreadable(path string, err error) *DashError {
	return Wrap(err, ErrCodeSubtreeUnreadable,
		fmt.Sprintf("subtree not readable, skipping: %s", path)).
		WithDetail("path", path)
}

// SkillNotFound creates an error for a README lookup on an unknown skill.
func SkillNotFound(name string) *DashError {
	return New(ErrCodeSkillNotFound, fmt.Sprintf("skill '%s' not found", name)).
		WithDetail("skill", name)
}

// SubscriberEvicted records why a channel subscriber was removed.
func SubscriberEvicted(channel, reason string) *DashError {
	return New(ErrCodeSubscriberEvicted,
		fmt.Sprintf("subscriber evicted from channel '%s': %s", channel, reason)).
		WithDetail("channel", channel).
		WithDetail("reason", reason)
}

// DaemonAlreadyRunning creates an error for a second daemon instance.
func DaemonAlreadyRunning(pid int) *DashError {
	return New(ErrCodeDaemonAlreadyRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}
