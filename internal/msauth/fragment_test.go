package msauth

import (
	"errors"
	"testing"
)

func TestParseFragment(t *testing.T) {
	values, err := ParseFragment("https://example.com/redirect#access_token=abc&expires_in=3600&state=xyz")
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	if got := values.Get("access_token"); got != "abc" {
		t.Errorf("Expected access_token=abc, got %q", got)
	}
	if got := values.Get("expires_in"); got != "3600" {
		t.Errorf("Expected expires_in=3600, got %q", got)
	}
}

func TestParseFragmentSlashPrefix(t *testing.T) {
	// Some provider builds emit '#/' before the pairs.
	values, err := ParseFragment("https://example.com/redirect#/access_token=abc")
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if got := values.Get("access_token"); got != "abc" {
		t.Errorf("Expected access_token=abc, got %q", got)
	}
}

func TestParseFragmentFormEncoding(t *testing.T) {
	values, err := ParseFragment("https://example.com/redirect#error_description=token+is+expired%21")
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if got := values.Get("error_description"); got != "token is expired!" {
		t.Errorf("Expected plus decoded as space, got %q", got)
	}
}

func TestParseFragmentMissing(t *testing.T) {
	_, err := ParseFragment("https://example.com/redirect?access_token=abc")
	if err == nil {
		t.Fatal("Expected error for URL without fragment, got nil")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected *DecodeError, got %T", err)
	}
}

func TestParseFragmentMalformed(t *testing.T) {
	_, err := ParseFragment("https://example.com/redirect#a=%zz")
	if err == nil {
		t.Fatal("Expected error for malformed percent encoding, got nil")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected *DecodeError, got %T", err)
	}
}
