package session

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// ParseRedirect extracts the token pair from the fragment of an OAuth
// redirect URL ("...#access_token=A&refresh_token=R&..."). ok is false
// unless both tokens are present and non-empty.
func ParseRedirect(redirectURL string) (pair models.TokenPair, ok bool) {
	_, fragment, found := strings.Cut(redirectURL, "#")
	if !found || fragment == "" {
		return models.TokenPair{}, false
	}

	values, err := url.ParseQuery(fragment)
	if err != nil {
		return models.TokenPair{}, false
	}

	pair = models.TokenPair{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return models.TokenPair{}, false
	}
	return pair, true
}
