package ocsp

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RequestContentType is the media type of a POSTed OCSP request
// (RFC 6960 Appendix A.1).
const RequestContentType = "application/ocsp-request"

// maxHTTPRequestSize bounds the POST body read. OCSP requests are small;
// a megabyte is already generous for a request carrying a certificate
// chain in its Signature.
const maxHTTPRequestSize = 1 << 20

// ParseRequestFromHTTP decodes an OCSP request from its RFC 6960 A.1 HTTP
// binding: GET carries the base64 request in the URL path, POST carries the
// raw DER in the body. Only decoding is done here; serving and responding
// are the caller's concern.
func ParseRequestFromHTTP(r *http.Request) (*OCSPRequest, error) {
	switch r.Method {
	case http.MethodGet:
		return parseRequestFromGET(r)
	case http.MethodPost:
		return parseRequestFromPOST(r)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", r.Method)
	}
}

func parseRequestFromGET(r *http.Request) (*OCSPRequest, error) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("empty OCSP request in GET path")
	}

	// The base64 value is URL-escaped when placed in the path.
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return nil, fmt.Errorf("failed to URL-decode OCSP request: %w", err)
	}

	// A.1 specifies standard base64; some clients send the URL-safe or
	// unpadded variants, so try those before giving up.
	var data []byte
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err = enc.DecodeString(unescaped); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to base64-decode OCSP request: %w", err)
	}

	return ParseRequest(data)
}

func parseRequestFromPOST(r *http.Request) (*OCSPRequest, error) {
	// Be lenient about the header: some clients omit it entirely.
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, RequestContentType) &&
		!strings.HasPrefix(contentType, "application/") {
		return nil, fmt.Errorf("invalid content type: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxHTTPRequestSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty OCSP request body")
	}

	return ParseRequest(data)
}
