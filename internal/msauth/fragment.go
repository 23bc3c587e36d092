package msauth

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseFragment extracts the key/value pairs the provider encodes into the
// fragment of its redirect URL. The fragment follows '#' (some provider
// builds emit '#/') and is an x-www-form-urlencoded query string: '+' means
// space and both keys and values are percent-decoded.
func ParseFragment(redirectURL string) (url.Values, error) {
	i := strings.Index(redirectURL, "#")
	if i < 0 {
		return nil, &DecodeError{Reason: "redirect URL carries no fragment"}
	}

	fragment := strings.TrimPrefix(redirectURL[i+1:], "/")
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("malformed fragment: %v", err), Err: err}
	}
	return values, nil
}
