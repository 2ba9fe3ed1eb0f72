package domain

import "net/url"

// Instance describes this node as seen by the outside world.
type Instance struct {
	FQDN              string
	BaseURL           string
	Name              string
	OpenRegistrations bool
}

// IsSameHost reports whether the given URI points at this node.
func (i Instance) IsSameHost(raw string) bool {
	uri, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return uri.Host == i.FQDN
}
