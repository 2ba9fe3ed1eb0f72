package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceIsSameHost(t *testing.T) {
	instance := Instance{FQDN: "seabird.example.com", BaseURL: "https://seabird.example.com"}

	assert.True(t, instance.IsSameHost("https://seabird.example.com/api/note/abc"))
	assert.False(t, instance.IsSameHost("https://other.example.com/api/note/abc"))
	assert.False(t, instance.IsSameHost("://not a uri"))
	assert.False(t, instance.IsSameHost("relative/path"))
}

func TestLikeActivityValidate(t *testing.T) {
	assert.True(t, LikeActivity{Type: "Like"}.Validate())
	assert.True(t, LikeActivity{Type: "like"}.Validate())
	assert.True(t, LikeActivity{Type: "LIKE"}.Validate())
	assert.False(t, LikeActivity{Type: "Follow"}.Validate())
	assert.False(t, LikeActivity{Type: ""}.Validate())
}
