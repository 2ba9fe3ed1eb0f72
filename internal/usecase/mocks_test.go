package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/seabird-social/seabird/internal/domain"
)

// --- mocks ---

type mockActorRepo struct {
	actors  []domain.Actor
	created []domain.Actor
	updated []domain.Actor
}

func (m *mockActorRepo) all() []domain.Actor {
	return append(append([]domain.Actor{}, m.actors...), m.created...)
}

func (m *mockActorRepo) GetByUsername(ctx context.Context, username string) (domain.Actor, error) {
	for _, a := range m.all() {
		if a.IsLocal() && strings.EqualFold(a.Username, username) {
			return a, nil
		}
	}
	return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
}

func (m *mockActorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	for _, a := range m.all() {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
}

func (m *mockActorRepo) GetByURI(ctx context.Context, uri string) (domain.Actor, error) {
	for _, a := range m.all() {
		if a.IsRemote() && a.URI == uri {
			return a, nil
		}
	}
	return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
}

func (m *mockActorRepo) GetByCredentialID(ctx context.Context, credentialID []byte) (domain.Actor, error) {
	for _, a := range m.all() {
		if a.Identity == nil {
			continue
		}
		for _, c := range a.Identity.Credentials {
			if bytes.Equal(c.Descriptor.ID, credentialID) {
				return a, nil
			}
		}
	}
	return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
}

func (m *mockActorRepo) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, a := range m.all() {
		if a.IsLocal() && strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockActorRepo) Create(ctx context.Context, actor domain.Actor) error {
	m.created = append(m.created, actor)
	return nil
}

func (m *mockActorRepo) Update(ctx context.Context, actor domain.Actor) error {
	m.updated = append(m.updated, actor)
	return nil
}

type likeEdge struct {
	actor  domain.Actor
	noteID uuid.UUID
}

type mockNoteRepo struct {
	notes     []domain.Note
	published []domain.Note
	likes     []likeEdge
	likeErr   error
}

func (m *mockNoteRepo) Publish(ctx context.Context, note domain.Note) error {
	m.published = append(m.published, note)
	return nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	for _, n := range m.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return domain.Note{}, domain.NotFoundError{Resource: "note"}
}

func (m *mockNoteRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Note, int64, error) {
	var out []domain.Note
	for _, n := range m.notes {
		if n.Author.ID == authorID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockNoteRepo) Like(ctx context.Context, actor domain.Actor, noteID uuid.UUID) error {
	if m.likeErr != nil {
		return m.likeErr
	}
	m.likes = append(m.likes, likeEdge{actor: actor, noteID: noteID})
	return nil
}

func (m *mockNoteRepo) ListLikes(ctx context.Context, noteID uuid.UUID) ([]domain.Actor, error) {
	var out []domain.Actor
	for _, l := range m.likes {
		if l.noteID == noteID {
			out = append(out, l.actor)
		}
	}
	return out, nil
}

type mockCredentialRepo struct {
	bound        map[uuid.UUID][]domain.Credential
	byUserHandle map[string]*domain.Credential
	counters     map[uuid.UUID]uint32
	bindErr      error
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{
		bound:        map[uuid.UUID][]domain.Credential{},
		byUserHandle: map[string]*domain.Credential{},
		counters:     map[uuid.UUID]uint32{},
	}
}

func (m *mockCredentialRepo) ListDescriptors(ctx context.Context, actorID uuid.UUID) ([]domain.CredentialDescriptor, error) {
	var out []domain.CredentialDescriptor
	for _, c := range m.bound[actorID] {
		out = append(out, c.Descriptor)
	}
	return out, nil
}

func (m *mockCredentialRepo) Bind(ctx context.Context, actorID uuid.UUID, credential domain.Credential) error {
	if m.bindErr != nil {
		return m.bindErr
	}
	m.bound[actorID] = append(m.bound[actorID], credential)
	m.byUserHandle[string(credential.UserHandle)] = &credential
	return nil
}

func (m *mockCredentialRepo) FindByUserHandle(ctx context.Context, userHandle []byte) (*domain.Credential, error) {
	return m.byUserHandle[string(userHandle)], nil
}

func (m *mockCredentialRepo) AdvanceCounter(ctx context.Context, actorID uuid.UUID, counter uint32) error {
	m.counters[actorID] = counter
	return nil
}

type mockStateStore struct {
	states map[string][]byte
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{states: map[string][]byte{}}
}

func (m *mockStateStore) Put(ctx context.Context, sessionID, slot string, payload []byte) error {
	m.states[sessionID+"/"+slot] = payload
	return nil
}

func (m *mockStateStore) Take(ctx context.Context, sessionID, slot string) ([]byte, error) {
	payload, ok := m.states[sessionID+"/"+slot]
	if !ok {
		return nil, domain.ErrMissingCeremonyState
	}
	delete(m.states, sessionID+"/"+slot)
	return payload, nil
}

type mockVerifier struct {
	registrationErr error
	assertionErr    error
	newCounter      uint32
	boundDescriptor []byte
}

func (m *mockVerifier) IssueRegistrationChallenge(ctx context.Context, subject RegistrationSubject, exclude []domain.CredentialDescriptor, attestation string) (json.RawMessage, []byte, error) {
	state, _ := json.Marshal(map[string]any{"challenge": "reg", "subject": subject.Name})
	return json.RawMessage(`{"publicKey":{}}`), state, nil
}

func (m *mockVerifier) VerifyRegistration(ctx context.Context, clientResponse, state []byte, subject RegistrationSubject, nameAvailable func(context.Context, string) (bool, error)) (*BoundCredential, error) {
	if m.registrationErr != nil {
		return nil, m.registrationErr
	}
	available, err := nameAvailable(ctx, string(subject.ID))
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.VerificationError{Message: "username is already taken"}
	}
	id := m.boundDescriptor
	if id == nil {
		id = []byte("credential-id")
	}
	return &BoundCredential{
		UserHandle: subject.ID,
		PublicKey:  []byte("public-key"),
		Descriptor: domain.CredentialDescriptor{ID: id, Type: "public-key"},
	}, nil
}

func (m *mockVerifier) IssueAssertionChallenge(ctx context.Context, allow []domain.CredentialDescriptor) (json.RawMessage, []byte, error) {
	state, _ := json.Marshal(map[string]any{"challenge": "assert"})
	return json.RawMessage(`{"publicKey":{}}`), state, nil
}

func (m *mockVerifier) CredentialIDOf(clientResponse []byte) ([]byte, error) {
	var raw struct {
		RawID []byte `json:"rawId"`
	}
	if err := json.Unmarshal(clientResponse, &raw); err != nil {
		return nil, err
	}
	return raw.RawID, nil
}

func (m *mockVerifier) VerifyAssertion(ctx context.Context, clientResponse, state []byte, subject AssertionSubject, ownership func(ctx context.Context, userHandle, credentialID []byte) (bool, error)) (*AssertionResult, error) {
	if m.assertionErr != nil {
		return nil, m.assertionErr
	}
	return &AssertionResult{NewCounter: m.newCounter}, nil
}

type mockFetcher struct {
	profiles map[string]domain.RemoteProfile
	err      error
	calls    int
}

func (m *mockFetcher) Fetch(ctx context.Context, uri string) (domain.RemoteProfile, error) {
	m.calls++
	if m.err != nil {
		return domain.RemoteProfile{}, m.err
	}
	profile, ok := m.profiles[uri]
	if !ok {
		return domain.RemoteProfile{}, domain.NotFoundError{Resource: "profile"}
	}
	return profile, nil
}
