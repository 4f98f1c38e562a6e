package switchbot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const contentType = "application/json; charset=utf8"

// Headers is the authentication material for a single request.
type Headers struct {
	Authorization string
	Sign          string
	Nonce         string
	Timestamp     string
}

// Sign produces fresh headers for one request: millisecond timestamp, random
// nonce and the Base64 HMAC-SHA256 of token+timestamp+nonce keyed by secret.
func Sign(token, secret string) (Headers, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return Headers{}, fmt.Errorf("generate nonce: %w", err)
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return SignWith(token, secret, ts, nonce.String()), nil
}

// SignWith is the deterministic core of Sign.
func SignWith(token, secret, timestamp, nonce string) Headers {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token + timestamp + nonce))
	return Headers{
		Authorization: token,
		Sign:          base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		Nonce:         nonce,
		Timestamp:     timestamp,
	}
}

// Apply sets the vendor headers on req.
func (h Headers) Apply(req *http.Request) {
	req.Header.Set("Authorization", h.Authorization)
	req.Header.Set("sign", h.Sign)
	req.Header.Set("nonce", h.Nonce)
	req.Header.Set("t", h.Timestamp)
	req.Header.Set("Content-Type", contentType)
}
