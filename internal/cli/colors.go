package cli

// ANSI color codes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
)

// FormatStatus returns a colored status string.
func FormatStatus(status string) string {
	switch status {
	case "valid", "signed":
		return ColorGreen + status + ColorReset
	case "invalid", "malformed":
		return ColorRed + status + ColorReset
	case "unsigned", "degenerate":
		return ColorYellow + status + ColorReset
	default:
		return status
	}
}
