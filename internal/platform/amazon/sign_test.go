package amazon

import (
	"bytes"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedRequest(t *testing.T, body string, now time.Time) *http.Request {
	t.Helper()

	s := signer{
		accessKey: "AKIDEXAMPLE",
		secretKey: "wJalrXUtnFEMI",
		region:    signingRegion,
		service:   signingService,
	}
	req, err := http.NewRequest(http.MethodPost,
		"https://webservices.amazon.co.uk/paapi5/searchitems", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Amz-Target", amzTarget)

	s.sign(req, []byte(body), now)
	return req
}

func TestSignIsDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	a := signedRequest(t, `{"Keywords":"lego"}`, now)
	b := signedRequest(t, `{"Keywords":"lego"}`, now)

	assert.Equal(t, "20240315T103000Z", a.Header.Get("X-Amz-Date"))
	assert.Equal(t, a.Header.Get("Authorization"), b.Header.Get("Authorization"))
}

func TestSignAuthorizationShape(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	req := signedRequest(t, `{"Keywords":"lego"}`, now)

	auth := req.Header.Get("Authorization")
	assert.Contains(t, auth,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240315/us-east-1/ProductAdvertisingAPI/aws4_request")
	assert.Contains(t, auth, "SignedHeaders=")
	assert.Contains(t, auth, "content-type")
	assert.Contains(t, auth, "host")
	assert.Contains(t, auth, "x-amz-date")
	assert.Contains(t, auth, "x-amz-target")

	sig := regexp.MustCompile(`Signature=([0-9a-f]+)$`).FindStringSubmatch(auth)
	require.Len(t, sig, 2)
	assert.Len(t, sig[1], 64)
}

func TestSignVariesWithPayload(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	a := signedRequest(t, `{"Keywords":"lego"}`, now)
	b := signedRequest(t, `{"Keywords":"sony"}`, now)

	assert.NotEqual(t, a.Header.Get("Authorization"), b.Header.Get("Authorization"))
}

func TestSignVariesWithDay(t *testing.T) {
	a := signedRequest(t, `{}`, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	b := signedRequest(t, `{}`, time.Date(2024, 3, 16, 10, 30, 0, 0, time.UTC))

	assert.NotEqual(t, a.Header.Get("Authorization"), b.Header.Get("Authorization"))
}
