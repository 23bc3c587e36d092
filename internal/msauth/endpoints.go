package msauth

import (
	"net/url"
	"strings"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// Well-known tenant id the identity provider reports for personal
// (consumer) Microsoft accounts. Any other non-empty tenant id means a
// work or school account.
const consumersTenantID = "9188040d-6c67-4c5b-b112-36a304b66dad"

// DefaultAuthority is the v2.0 endpoint base used when the config does not
// override it.
const DefaultAuthority = "https://login.microsoftonline.com/common/oauth2/v2.0"

// ClassifyDomain maps the tenant id claim to the account domain.
func ClassifyDomain(tenantID string) store.Domain {
	switch tenantID {
	case "":
		return store.DomainUnknown
	case consumersTenantID:
		return store.DomainConsumers
	default:
		return store.DomainOrganizations
	}
}

// authorizeURL builds the implicit-flow authorization request. The provider
// answers by redirecting to the configured URI with the result encoded in
// the URL fragment.
func (c Config) authorizeURL(nonce string, interactive bool) string {
	prompt := "none"
	if interactive {
		prompt = "login"
	}

	q := url.Values{}
	q.Set("response_mode", "fragment")
	q.Set("response_type", "id_token token")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("scope", strings.Join(c.Scopes, " "))
	q.Set("prompt", prompt)
	if c.LoginHint != "" {
		q.Set("login_hint", c.LoginHint)
	}
	if c.DomainHint != "" {
		q.Set("domain_hint", c.DomainHint)
	}
	q.Set("nonce", nonce)

	return strings.TrimSuffix(c.Authority, "/") + "/authorize?" + q.Encode()
}

// logoutURL picks the logout endpoint matching the signed-in domain.
func (c Config) logoutURL(domain store.Domain) string {
	tenant := "common"
	switch domain {
	case store.DomainConsumers:
		tenant = "consumers"
	case store.DomainOrganizations:
		tenant = "organizations"
	}

	q := url.Values{}
	q.Set("client_id", c.ClientID)
	return "https://login.microsoftonline.com/" + tenant + "/oauth2/v2.0/logout?" + q.Encode()
}
