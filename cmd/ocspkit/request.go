package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mbaylis/ocspkit/internal/audit"
	"github.com/mbaylis/ocspkit/internal/cli"
	"github.com/mbaylis/ocspkit/internal/profile"
	"github.com/mbaylis/ocspkit/internal/x509util"
	"github.com/mbaylis/ocspkit/pkg/ocsp"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "OCSP request operations (RFC 6960 §4.1.1)",
	Long: `Build, inspect, and query DER-encoded OCSP requests.

This command provides:
  - create:  Build a request for one or more certificates
  - inspect: Parse a request and display its contents
  - nonce:   Print a request's nonce extension value

Examples:
  # Request the status of a certificate
  ocspkit request create --issuer ca.crt --cert server.crt --out req.der

  # Several certificates in one request, SHA-1 CertIDs for a legacy responder
  ocspkit request create --issuer ca.crt --cert a.crt --cert b.crt --hash sha1 --out req.der

  # A bare serial number, with replay protection
  ocspkit request create --issuer ca.crt --serial 0A1B2C --nonce --out req.der

  # Use a profile instead of individual flags
  ocspkit request create --issuer ca.crt --cert server.crt --profile sha256-nonce --out req.der`,
}

var (
	createIssuerPath    string
	createCertPaths     []string
	createSerials       []string
	createHashName      string
	createProfileName   string
	createNonce         bool
	createNonceSize     int
	createRequestorName string
	createOutPath       string
)

var requestCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Build a DER-encoded OCSP request",
	Long: `Build an unsigned OCSP request for one or more certificates.

Certificates are named either by file (--cert, repeatable) or by serial
number (--serial, repeatable, hex). Both kinds may be mixed; the request
list preserves the order certificates were given in.

A profile (--profile, built-in name or YAML path) supplies defaults for the
hash algorithm, nonce policy, and requestor name; explicit flags override
it.`,
	RunE: runRequestCreate,
}

var requestInspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Parse and display an OCSP request",
	Long: `Parse a DER-encoded OCSP request and display its contents.

Parsing is strict: a request that deviates from canonical DER is rejected
outright. A request that parses but is semantically degenerate (empty
request list, unknown version) is displayed with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runRequestInspect,
}

var requestNonceCmd = &cobra.Command{
	Use:   "nonce [file]",
	Short: "Print a request's nonce",
	Long: `Print the hex value of a request's nonce extension.

A request with no nonce extension, and one whose nonce extension value is
malformed, are both reported as carrying no nonce; the protocol library
does not distinguish the two.`,
	Args: cobra.ExactArgs(1),
	RunE: runRequestNonce,
}

func init() {
	requestCreateCmd.Flags().StringVar(&createIssuerPath, "issuer", "", "Issuer certificate file (required)")
	requestCreateCmd.Flags().StringArrayVar(&createCertPaths, "cert", nil, "Certificate file to query (repeatable)")
	requestCreateCmd.Flags().StringArrayVar(&createSerials, "serial", nil, "Serial number to query, hex (repeatable)")
	requestCreateCmd.Flags().StringVar(&createHashName, "hash", "", "CertID hash algorithm: sha1, sha256, sha384, sha512 (default sha256)")
	requestCreateCmd.Flags().StringVar(&createProfileName, "profile", "", "Request profile: built-in name or YAML file path")
	requestCreateCmd.Flags().BoolVar(&createNonce, "nonce", false, "Add a random nonce extension")
	requestCreateCmd.Flags().IntVar(&createNonceSize, "nonce-size", 0, fmt.Sprintf("Nonce size in bytes (default %d)", ocsp.DefaultNonceSize))
	requestCreateCmd.Flags().StringVar(&createRequestorName, "requestor-name", "", "Requestor name as kind:value (dns:host, email:addr, uri:..., ip:addr)")
	requestCreateCmd.Flags().StringVar(&createOutPath, "out", "", "Output file (default stdout)")
	_ = requestCreateCmd.MarkFlagRequired("issuer")

	requestCmd.AddCommand(requestCreateCmd)
	requestCmd.AddCommand(requestInspectCmd)
	requestCmd.AddCommand(requestNonceCmd)
}

func runRequestCreate(cmd *cobra.Command, args []string) error {
	opts, err := resolveCreateOptions()
	if err != nil {
		return err
	}

	auditLog, err := openAuditWriter()
	if err != nil {
		return err
	}
	defer auditLog.Close()

	issuer, err := cli.LoadCertFromPath(createIssuerPath)
	if err != nil {
		return err
	}

	req, serials, err := buildRequest(issuer, opts)
	if err != nil {
		return err
	}

	if opts.nonce {
		n, err := ocsp.NewNonce(opts.nonceSize)
		if err != nil {
			return err
		}
		ext, err := ocsp.NonceExtension(n)
		if err != nil {
			return err
		}
		req.TBSRequest.RequestExtensions = append(req.TBSRequest.RequestExtensions, ext)

		if err := auditLog.Write(audit.NewEvent(audit.EventNonceGenerated, audit.ResultSuccess).
			WithContext(audit.Context{NonceSize: len(n)})); err != nil {
			return err
		}
	}

	if opts.requestorName != "" {
		name, err := x509util.ParseGeneralNameText(opts.requestorName)
		if err != nil {
			return err
		}
		req.TBSRequest.RequestorName = name
	}

	der, err := req.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode OCSP request: %w", err)
	}
	if err := cli.WriteFileOrStdout(createOutPath, der); err != nil {
		return err
	}

	if err := auditLog.Write(audit.NewEvent(audit.EventRequestCreated, audit.ResultSuccess).
		WithObject(audit.Object{Type: "ocsp_request", Serials: strings.Join(serials, ","), Path: createOutPath}).
		WithContext(audit.Context{
			Hash:          profile.HashName(opts.hash),
			Profile:       opts.profileName,
			Requests:      len(req.TBSRequest.RequestList),
			NonceSize:     opts.nonceSizeOrZero(),
			RequestorName: opts.requestorName,
		})); err != nil {
		return err
	}

	if createOutPath != "" && createOutPath != "-" {
		fmt.Printf("OCSP request written to %s (%d bytes, %d certificate(s))\n",
			createOutPath, len(der), len(req.TBSRequest.RequestList))
	}
	return nil
}

func runRequestInspect(cmd *cobra.Command, args []string) error {
	auditLog, err := openAuditWriter()
	if err != nil {
		return err
	}
	defer auditLog.Close()

	data, err := cli.ReadFileOrStdin(args[0])
	if err != nil {
		return err
	}

	req, err := ocsp.ParseRequest(data)
	if err != nil {
		if auditErr := auditLog.Write(audit.NewEvent(audit.EventRequestParsed, audit.ResultFailure).
			WithObject(audit.Object{Type: "ocsp_request", Path: args[0]}).
			WithContext(audit.Context{Reason: err.Error()})); auditErr != nil {
			return auditErr
		}
		return err
	}

	if err := auditLog.Write(audit.NewEvent(audit.EventRequestParsed, audit.ResultSuccess).
		WithObject(audit.Object{Type: "ocsp_request", Path: args[0]}).
		WithContext(audit.Context{
			Requests: len(req.TBSRequest.RequestList),
			Signed:   req.OptionalSignature != nil,
		})); err != nil {
		return err
	}

	printRequest(req)
	return nil
}

func runRequestNonce(cmd *cobra.Command, args []string) error {
	data, err := cli.ReadFileOrStdin(args[0])
	if err != nil {
		return err
	}

	req, err := ocsp.ParseRequest(data)
	if err != nil {
		return err
	}

	n := req.Nonce()
	if n == nil {
		return errors.New("request carries no nonce")
	}
	fmt.Println(hex.EncodeToString(n))
	return nil
}
