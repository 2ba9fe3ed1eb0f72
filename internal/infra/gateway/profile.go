package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/usecase"
)

const defaultTimeout = 10 * time.Second

// ProfileGateway fetches activity-stream actor profiles from remote
// instances. Responses are cached so repeated likes from one actor do not
// hammer its origin.
type ProfileGateway struct {
	client *http.Client
	cache  *cache.Cache
}

func NewProfileGateway(timeout time.Duration) *ProfileGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProfileGateway{
		client: &http.Client{Timeout: timeout},
		cache:  cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (g *ProfileGateway) Fetch(ctx context.Context, uri string) (domain.RemoteProfile, error) {
	if cached, found := g.cache.Get(uri); found {
		return cached.(domain.RemoteProfile), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return domain.RemoteProfile{}, pkgerrors.Wrap(err, "failed to build profile request")
	}
	req.Header.Add("Accept", `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`)
	req.Header.Add("Accept", "application/activity+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.RemoteProfile{}, pkgerrors.Wrap(err, "profile fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RemoteProfile{}, pkgerrors.Errorf("profile fetch returned status %d", resp.StatusCode)
	}

	var profile domain.RemoteProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return domain.RemoteProfile{}, pkgerrors.Wrap(err, "could not parse actor profile")
	}
	if profile.ID == "" || profile.PreferredUsername == "" {
		return domain.RemoteProfile{}, pkgerrors.New("actor profile is missing required fields")
	}

	g.cache.Set(uri, profile, cache.DefaultExpiration)
	return profile, nil
}

var _ usecase.ProfileFetcher = (*ProfileGateway)(nil)
