// Command ocspkit is the CLI tool for building and inspecting OCSP
// requests (RFC 6960).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbaylis/ocspkit/internal/audit"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var auditLogPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ocspkit",
	Short: "OCSP request toolkit (RFC 6960)",
	Long: `ocspkit builds, serializes, and parses OCSP requests per RFC 6960 §4.1.1.

Requests are encoded in strict DER: parsing rejects any deviation from the
single canonical form, and encoding always produces it. Responses, request
signing, and network transport are out of scope.

Examples:
  # Build a request for a certificate, with a nonce
  ocspkit request create --issuer ca.crt --cert server.crt --nonce --out req.der

  # Build a request for a bare serial number using a profile
  ocspkit request create --issuer ca.crt --serial 0A1B2C --profile sha256-nonce --out req.der

  # Inspect a request
  ocspkit request inspect req.der

  # Print a request's nonce
  ocspkit request nonce req.der

  # List built-in request profiles
  ocspkit profile list`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ocspkit %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set OCSPKIT_AUDIT_LOG env var)")

	rootCmd.AddCommand(requestCmd) // ocspkit request ...
	rootCmd.AddCommand(profileCmd) // ocspkit profile ...
	rootCmd.AddCommand(auditCmd)   // ocspkit audit ...
	rootCmd.AddCommand(versionCmd)
}

// openAuditWriter returns the writer selected by --audit-log or the
// OCSPKIT_AUDIT_LOG environment variable. Auditing is disabled when
// neither is set.
func openAuditWriter() (audit.Writer, error) {
	path := auditLogPath
	if path == "" {
		path = os.Getenv("OCSPKIT_AUDIT_LOG")
	}
	if path == "" {
		return audit.NopWriter{}, nil
	}
	return audit.NewFileWriter(path)
}
