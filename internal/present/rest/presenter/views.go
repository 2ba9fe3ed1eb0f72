package presenter

import (
	"fmt"
	"time"

	"github.com/seabird-social/seabird/internal/domain"
)

const (
	ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"
	PublicAudience         = "https://www.w3.org/ns/activitystreams#Public"
)

// ActorView is the activity-stream profile document of a local actor.
type ActorView struct {
	Context           string `json:"@context"`
	ID                string `json:"id"`
	Type              string `json:"type"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferredUsername"`
	Summary           string `json:"summary"`
	Inbox             string `json:"inbox"`
	Outbox            string `json:"outbox"`
}

func NewActorView(baseURL string, actor domain.Actor) ActorView {
	self := fmt.Sprintf("%s/api/actor/%s", baseURL, actor.ID)
	return ActorView{
		Context:           ActivityStreamsContext,
		ID:                self,
		Type:              "Person",
		Name:              actor.DisplayName,
		PreferredUsername: actor.Username,
		Summary:           "",
		Inbox:             self + "/inbox",
		Outbox:            self + "/outbox",
	}
}

type SourceView struct {
	Content   string `json:"content"`
	MediaType string `json:"mediaType"`
}

// NoteView is the activity-stream rendering of one note, addressed to the
// public audience.
type NoteView struct {
	Context      string     `json:"@context"`
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	AttributedTo string     `json:"attributedTo"`
	To           []string   `json:"to"`
	InReplyTo    *string    `json:"inReplyTo"`
	Content      string     `json:"content"`
	Source       SourceView `json:"source"`
	Published    time.Time  `json:"published"`
	Sensitive    bool       `json:"sensitive"`
	Likes        string     `json:"likes"`
}

func NewNoteView(baseURL string, author domain.Actor, note domain.Note) NoteView {
	self := fmt.Sprintf("%s/api/note/%s", baseURL, note.ID)
	return NoteView{
		Context:      ActivityStreamsContext,
		ID:           self,
		Type:         "Note",
		AttributedTo: fmt.Sprintf("%s/api/actor/%s", baseURL, author.ID),
		To:           []string{PublicAudience},
		Content:      note.Content,
		Source:       SourceView{Content: note.Content, MediaType: "text/plain"},
		Published:    note.PublishDate,
		Sensitive:    false,
		Likes:        self + "/likes",
	}
}

// OrderedCollection wraps items in the activity-stream collection shape.
type OrderedCollection[T any] struct {
	Context      string `json:"@context"`
	Type         string `json:"type"`
	Summary      string `json:"summary"`
	TotalItems   int64  `json:"totalItems"`
	OrderedItems []T    `json:"orderedItems"`
}

func NewOrderedCollection[T any](summary string, total int64, items []T) OrderedCollection[T] {
	if items == nil {
		items = []T{}
	}
	return OrderedCollection[T]{
		Context:      ActivityStreamsContext,
		Type:         "OrderedCollection",
		Summary:      summary,
		TotalItems:   total,
		OrderedItems: items,
	}
}

// ProfileView is the plain client-facing rendering of an actor.
type ProfileView struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func NewProfileView(actor domain.Actor) ProfileView {
	return ProfileView{
		Username:    actor.Username,
		DisplayName: actor.DisplayName,
	}
}

// SimpleNoteView is the plain client-facing rendering of a note.
type SimpleNoteView struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Published time.Time   `json:"published"`
	Author    ProfileView `json:"author"`
}

func NewSimpleNoteView(note domain.Note) SimpleNoteView {
	return SimpleNoteView{
		ID:        note.ID.String(),
		Content:   note.Content,
		Published: note.PublishDate,
		Author:    NewProfileView(note.Author),
	}
}

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// WebfingerView is the acct resolution document.
type WebfingerView struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases"`
	Links   []WebfingerLink `json:"links"`
}

func NewWebfingerView(instance domain.Instance, actor domain.Actor) WebfingerView {
	self := fmt.Sprintf("%s/api/actor/%s", instance.BaseURL, actor.ID)
	return WebfingerView{
		Subject: fmt.Sprintf("acct:%s@%s", actor.Username, instance.FQDN),
		Aliases: []string{
			self,
			fmt.Sprintf("%s/api/actor/@%s", instance.BaseURL, actor.Username),
		},
		Links: []WebfingerLink{
			{Rel: "self", Type: ActivityContentType, Href: self},
		},
	}
}

type NodeInfoSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type NodeInfoMetadata struct {
	NodeName        string `json:"nodeName"`
	NodeDescription string `json:"nodeDescription"`
}

type NodeInfoUsers struct {
	Total          int `json:"total"`
	ActiveMonth    int `json:"activeMonth"`
	ActiveHalfYear int `json:"activeHalfyear"`
}

type NodeInfoUsage struct {
	LocalPosts int           `json:"localPosts"`
	Users      NodeInfoUsers `json:"users"`
}

type NodeInfoServices struct {
	Inbound  []string `json:"inbound"`
	Outbound []string `json:"outbound"`
}

// NodeInfoView is the nodeinfo 2.0 document.
type NodeInfoView struct {
	Version           string           `json:"version"`
	Software          NodeInfoSoftware `json:"software"`
	Protocols         []string         `json:"protocols"`
	Services          NodeInfoServices `json:"services"`
	OpenRegistrations bool             `json:"openRegistrations"`
	Usage             NodeInfoUsage    `json:"usage"`
	Metadata          NodeInfoMetadata `json:"metadata"`
}

func NewNodeInfoView(instance domain.Instance, version string) NodeInfoView {
	return NodeInfoView{
		Version:           "2.0",
		Software:          NodeInfoSoftware{Name: "seabird", Version: version},
		Protocols:         []string{"activitypub"},
		Services:          NodeInfoServices{Inbound: []string{}, Outbound: []string{}},
		OpenRegistrations: instance.OpenRegistrations,
		Usage:             NodeInfoUsage{LocalPosts: -1, Users: NodeInfoUsers{Total: 1, ActiveMonth: 1, ActiveHalfYear: 1}},
		Metadata:          NodeInfoMetadata{NodeName: instance.Name, NodeDescription: ""},
	}
}
