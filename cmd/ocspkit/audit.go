package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbaylis/ocspkit/internal/audit"
	"github.com/mbaylis/ocspkit/internal/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <log-file>",
	Short: "Verify the hash chain of an audit log",
	Long: `Verify the integrity of an audit log file.

Each entry carries a SHA-256 hash of its content and the hash of the
previous entry. Verification walks the chain from the genesis anchor and
reports the first entry that was tampered with, removed, or reordered.

Examples:
  ocspkit audit verify audit.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	path := args[0]

	count, err := audit.VerifyChain(path)
	if err != nil {
		fmt.Printf("Audit log:     %s\n", path)
		fmt.Printf("Valid entries: %d\n", count)
		fmt.Printf("Status:        %s\n", cli.FormatStatus("invalid"))
		return fmt.Errorf("audit chain verification failed: %w", err)
	}

	fmt.Printf("Audit log:     %s\n", path)
	fmt.Printf("Valid entries: %d\n", count)
	fmt.Printf("Status:        %s\n", cli.FormatStatus("valid"))
	return nil
}
