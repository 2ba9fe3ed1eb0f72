package domain

import "strings"

// LikeActivity is the inbound federated assertion that a remote actor likes
// a local object.
type LikeActivity struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	Object string `json:"object"`
}

// Validate checks the minimal activity schema: a recognized, non-empty type.
func (a LikeActivity) Validate() bool {
	// TODO check @context once more activity types are accepted
	return strings.EqualFold(a.Type, "like")
}

// RemoteProfile is the subset of an activity-stream actor document this node
// cares about.
type RemoteProfile struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	PreferredUsername string `json:"preferredUsername"`
	Name              string `json:"name"`
}
