package amazon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// signer computes AWS Signature Version 4 headers for PA-API requests.
// PA-API always signs against the ProductAdvertisingAPI service in us-east-1
// regardless of the marketplace endpoint.
type signer struct {
	accessKey string
	secretKey string
	region    string
	service   string
}

const signingAlgorithm = "AWS4-HMAC-SHA256"

// sign sets X-Amz-Date and Authorization on req. The payload must be the
// exact request body; now supplies the signing timestamp so tests can be
// deterministic.
func (s signer) sign(req *http.Request, payload []byte, now time.Time) {
	amzDate := now.UTC().Format("20060102T150405Z")
	dateStamp := amzDate[:8]

	req.Header.Set("X-Amz-Date", amzDate)

	canonicalHeaders, signedHeaders := canonicalizeHeaders(req)
	payloadHash := hexSHA256(payload)

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.EscapedPath(),
		req.URL.RawQuery,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := strings.Join([]string{dateStamp, s.region, s.service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		credentialScope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signingKey := s.signingKey(dateStamp)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, s.accessKey, credentialScope, signedHeaders, signature,
	))
}

// signingKey derives the per-day signing key:
// HMAC(HMAC(HMAC(HMAC("AWS4"+secret, date), region), service), "aws4_request").
func (s signer) signingKey(dateStamp string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+s.secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, s.region)
	kService := hmacSHA256(kRegion, s.service)
	return hmacSHA256(kService, "aws4_request")
}

// canonicalizeHeaders builds the canonical header block and the signed-header
// list from the request's current headers, plus the implicit Host header.
func canonicalizeHeaders(req *http.Request) (canonical, signed string) {
	headers := map[string]string{"host": req.Host}
	for name, values := range req.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = strings.TrimSpace(values[0])
		}
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(headers[name])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";")
}

func hmacSHA256(key []byte, message string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
