package msauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// DecodeError marks a malformed redirect fragment, an undecodable id token
// payload, or an audience mismatch. It is always handled as a failed login
// attempt, never as a crash.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeIDToken extracts the user profile from a compact JWS id token. The
// token is split into exactly three non-empty segments; only the payload is
// decoded, the signature is not verified here (the nonce round-trip and the
// TLS channel carry that weight). The claims are accepted only when their
// aud claim equals the client id, compared case-insensitively.
func DecodeIDToken(idToken, clientID string) (*store.UserProfile, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, &DecodeError{Reason: "id token is not a three-segment JWS"}
	}

	payload, err := decodeBase64URLSafe(parts[1])
	if err != nil {
		return nil, &DecodeError{Reason: "id token payload is not valid base64", Err: err}
	}

	var profile store.UserProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, &DecodeError{Reason: "id token payload is not valid JSON", Err: err}
	}

	if !strings.EqualFold(profile.Audience, clientID) {
		return nil, &DecodeError{Reason: "id token audience does not match client id"}
	}

	return &profile, nil
}

// decodeBase64URLSafe decodes URL-safe base64 ('-' and '_' alphabet),
// tolerating missing padding.
func decodeBase64URLSafe(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")

	switch len(s) % 4 {
	case 1:
		return nil, fmt.Errorf("invalid base64 length")
	case 2:
		s += "=="
	case 3:
		s += "="
	}

	return base64.StdEncoding.DecodeString(s)
}
