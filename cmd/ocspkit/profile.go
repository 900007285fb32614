package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbaylis/ocspkit/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Request profile operations",
	Long: `List and show the request profiles bundled with ocspkit.

A profile names the CertID hash algorithm, the nonce policy, and an
optional requestor name. Pass a profile to "request create" with
--profile, either by built-in name or as a YAML file path.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in request profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range profile.BuiltinNames() {
			p, err := profile.Load(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %s\n", p.Name, p.Description)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a request profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name: %s\n", p.Name)
		fmt.Printf("Description: %s\n", p.Description)
		fmt.Printf("Hash: %s\n", profile.HashName(p.Hash))
		if p.NonceEnabled {
			fmt.Printf("Nonce: %d bytes\n", p.NonceSize)
		} else {
			fmt.Println("Nonce: disabled")
		}
		if p.RequestorName != "" {
			fmt.Printf("Requestor Name: %s\n", p.RequestorName)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
}
