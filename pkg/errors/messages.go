package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var authErr *AuthError
	if As(err, &authErr) {
		return formatAuthError(authErr)
	}

	var transportErr *TransportError
	if As(err, &transportErr) {
		return formatTransportError(transportErr)
	}

	var wfErr *WorkflowError
	if As(err, &wfErr) {
		return formatWorkflowError(wfErr)
	}

	// GitHostError and CommandError messages are already meant for users.
	return err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/tug/config.toml\n")
	b.WriteString("  • Check the repository config file: .tug.toml\n")
	b.WriteString("  • Run 'tug config show' to see the effective configuration\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatAuthError formats an AuthError with actionable guidance.
func formatAuthError(err *AuthError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", err.Message)
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Run 'tug auth add' to configure a token for this host\n")
	b.WriteString("  • Or set the GITHUB_TOKEN or TUG_GITHUB_TOKEN environment variable\n")
	b.WriteString("  • Or set github.auth_method = \"gh_cli\" to reuse the gh CLI session\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatTransportError formats a TransportError with guidance based on status code.
func formatTransportError(err *TransportError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Git host error during %s: %s\n", err.Operation, err.Message)

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. To fix this:\n")
		b.WriteString("  • Your token may have been revoked: run 'tug auth delete' then 'tug auth add'\n")
		b.WriteString("  • Ensure your token has the 'repo' scope\n")

	case 403:
		b.WriteString("\nPermission denied. To fix this:\n")
		b.WriteString("  • Ensure you have write access to this repository\n")
		b.WriteString("  • If using SSO, ensure the token is authorized for your organization\n")

	case 404:
		b.WriteString("\nResource not found. To fix this:\n")
		b.WriteString("  • Verify host.api_url in your configuration\n")
		b.WriteString("  • Check that you have access to the repository\n")

	case 422:
		b.WriteString("\nThe host rejected the request. Review the details above.\n")

	case 429:
		b.WriteString("\nRate limit exceeded. Wait a few minutes before trying again.\n")

	case 500, 502, 503, 504:
		b.WriteString("\nGit host server error. Wait a few moments and try again.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatWorkflowError formats a WorkflowError with actionable guidance.
func formatWorkflowError(err *WorkflowError) string {
	var b strings.Builder

	if err.Step != "" {
		fmt.Fprintf(&b, "Merge stopped in '%s' step: %s\n", err.Step, err.Message)
	} else {
		fmt.Fprintf(&b, "Merge stopped: %s\n", err.Message)
	}

	switch {
	case err.Interrupted:
		b.WriteString("\nThe merge was interrupted. Check `git status` before going on.\n")

	case err.Step == "rebase", err.Step == "fast-forward":
		b.WriteString("\nThe rebase did not complete. To fix this:\n")
		b.WriteString("  • Resolve the conflicts, then 'git rebase --continue'\n")
		b.WriteString("  • Run 'tug pr merge' again once your branch is clean\n")

	case err.Step == "push-branch", err.Step == "push":
		b.WriteString("\nThe push was rejected. To fix this:\n")
		b.WriteString("  • Someone may have pushed in the meantime: run 'tug pr rebase'\n")
		b.WriteString("  • Then run 'tug pr merge' again\n")

	case err.Step == "cleanup":
		b.WriteString("\nThe pull request has been merged but cleanup failed.\n")
		b.WriteString("  • Delete the local and remote branches manually if needed\n")

	default:
		b.WriteString("\nTo troubleshoot:\n")
		b.WriteString("  • Run with --verbose for more details\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
