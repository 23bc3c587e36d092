package msauth

import "context"

// Navigator drives a browsing surface through one authorization round-trip:
// open the authorize URL, watch for the provider's redirect back to the
// configured URI and hand that URL (fragment included) to the caller.
//
// Interactive logins get a visible surface; silent refreshes get a hidden
// one whose teardown is bound to ctx. Implementations must deliver exactly
// one outcome per call.
type Navigator interface {
	Navigate(ctx context.Context, authURL, redirectPrefix string, visible bool) (string, error)
}
