package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seabird-social/seabird/internal/domain"
)

var testInstance = domain.Instance{
	FQDN:    "seabird.example.com",
	BaseURL: "https://seabird.example.com",
	Name:    "Seabird",
}

func newInboxFixture(t *testing.T) (*InboxUsecase, *mockNoteRepo, *mockFetcher, domain.Note) {
	t.Helper()

	author, err := domain.NewLocalActor("alice", "", nil)
	require.NoError(t, err)
	note, err := domain.NewNote(author, "a local note")
	require.NoError(t, err)

	notes := &mockNoteRepo{notes: []domain.Note{note}}
	fetcher := &mockFetcher{profiles: map[string]domain.RemoteProfile{
		"https://remote.example/users/bob": {
			ID:                "https://remote.example/users/bob",
			Type:              "Person",
			PreferredUsername: "bob",
			Name:              "Bob",
		},
	}}

	actors := NewActorUsecase(&mockActorRepo{})
	return NewInboxUsecase(testInstance, actors, notes, fetcher), notes, fetcher, note
}

func likeOf(note domain.Note) domain.LikeActivity {
	return domain.LikeActivity{
		ID:     "https://remote.example/activities/1",
		Type:   "Like",
		Actor:  "https://remote.example/users/bob",
		Object: "https://seabird.example.com/api/note/" + note.ID.String(),
	}
}

func TestProcessLike(t *testing.T) {
	uc, notes, _, note := newInboxFixture(t)

	err := uc.ProcessLike(context.Background(), likeOf(note))
	require.NoError(t, err)

	require.Len(t, notes.likes, 1)
	assert.Equal(t, note.ID, notes.likes[0].noteID)
	assert.True(t, notes.likes[0].actor.IsRemote())
	assert.Equal(t, "https://remote.example/users/bob", notes.likes[0].actor.URI)
	assert.Equal(t, "bob", notes.likes[0].actor.Username)
}

func TestProcessLikeRejectsOtherActivityTypes(t *testing.T) {
	uc, notes, fetcher, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Type = "Follow"

	err := uc.ProcessLike(context.Background(), activity)
	assert.ErrorIs(t, err, domain.ErrUnsupportedActivity)
	assert.Empty(t, notes.likes)
	assert.Zero(t, fetcher.calls)
}

func TestProcessLikeRejectsLocalActorBeforeFetch(t *testing.T) {
	uc, notes, fetcher, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Actor = "https://seabird.example.com/api/actor/123"

	err := uc.ProcessLike(context.Background(), activity)
	assert.ErrorIs(t, err, domain.ErrSelfLike)
	assert.Empty(t, notes.likes)
	assert.Zero(t, fetcher.calls)
}

func TestProcessLikeActorResolutionFailure(t *testing.T) {
	uc, notes, fetcher, note := newInboxFixture(t)
	fetcher.err = errors.New("connection refused")

	err := uc.ProcessLike(context.Background(), likeOf(note))
	assert.ErrorIs(t, err, domain.ErrActorResolution)
	assert.Empty(t, notes.likes)
}

func TestProcessLikeRejectsForeignTarget(t *testing.T) {
	uc, notes, fetcher, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Object = "https://other.example/api/note/" + note.ID.String()

	err := uc.ProcessLike(context.Background(), activity)
	assert.ErrorIs(t, err, domain.ErrForeignTarget)
	assert.Empty(t, notes.likes)
	// the self-host check of the object runs after profile resolution
	assert.Equal(t, 1, fetcher.calls)
}

func TestProcessLikeRejectsUnparsableObjectID(t *testing.T) {
	uc, _, _, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Object = "https://seabird.example.com/api/note/not-an-id"

	err := uc.ProcessLike(context.Background(), activity)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestProcessLikeUnknownNote(t *testing.T) {
	uc, _, _, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Object = "https://seabird.example.com/api/note/01921f6e-0000-7000-8000-000000000000"

	err := uc.ProcessLike(context.Background(), activity)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessLikePersistenceFailure(t *testing.T) {
	uc, notes, _, note := newInboxFixture(t)
	notes.likeErr = errors.New("database gone")

	err := uc.ProcessLike(context.Background(), likeOf(note))
	assert.ErrorIs(t, err, domain.ErrProcessingFailed)
}

func TestProcessLikeResolvesKnownRemoteActor(t *testing.T) {
	author, err := domain.NewLocalActor("alice", "", nil)
	require.NoError(t, err)
	note, err := domain.NewNote(author, "a local note")
	require.NoError(t, err)

	known := domain.NewRemoteActor("https://remote.example/users/bob", "bob", "Old Name")
	repo := &mockActorRepo{actors: []domain.Actor{known}}
	notes := &mockNoteRepo{notes: []domain.Note{note}}
	fetcher := &mockFetcher{profiles: map[string]domain.RemoteProfile{
		known.URI: {ID: known.URI, Type: "Person", PreferredUsername: "bob", Name: "Bob"},
	}}
	uc := NewInboxUsecase(testInstance, NewActorUsecase(repo), notes, fetcher)

	err = uc.ProcessLike(context.Background(), likeOf(note))
	require.NoError(t, err)

	// the edge references the directory's canonical record, not a fresh one
	require.Len(t, notes.likes, 1)
	assert.Equal(t, known.ID, notes.likes[0].actor.ID)
	assert.Equal(t, "Old Name", notes.likes[0].actor.DisplayName)
	assert.Empty(t, repo.created)
}

func TestProcessLikeIsCaseInsensitiveOnType(t *testing.T) {
	uc, notes, _, note := newInboxFixture(t)

	activity := likeOf(note)
	activity.Type = "like"

	err := uc.ProcessLike(context.Background(), activity)
	require.NoError(t, err)
	assert.Len(t, notes.likes, 1)
}
