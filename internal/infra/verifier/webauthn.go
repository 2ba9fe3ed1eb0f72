package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	pkgerrors "github.com/pkg/errors"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/usecase"
)

type Config struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string
}

// WebAuthnVerifier adapts the go-webauthn library to the CredentialVerifier
// port. Challenges and state are serialized JSON so the coordinator can park
// them in the ceremony store between the two phases.
type WebAuthnVerifier struct {
	wa *webauthn.WebAuthn
}

func New(cfg Config) (*WebAuthnVerifier, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid webauthn configuration")
	}
	return &WebAuthnVerifier{wa: wa}, nil
}

func (v *WebAuthnVerifier) IssueRegistrationChallenge(ctx context.Context, subject usecase.RegistrationSubject, exclude []domain.CredentialDescriptor, attestation string) (json.RawMessage, []byte, error) {
	user := ceremonyUser{
		id:          subject.ID,
		name:        subject.Name,
		displayName: subject.DisplayName,
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithExclusions(toProtocolDescriptors(exclude)),
	}
	if attestation != "" {
		opts = append(opts, webauthn.WithConveyancePreference(protocol.ConveyancePreference(strings.ToLower(attestation))))
	}

	creation, sessionData, err := v.wa.BeginRegistration(user, opts...)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "failed to issue registration challenge")
	}

	challenge, err := json.Marshal(creation)
	if err != nil {
		return nil, nil, err
	}
	state, err := json.Marshal(sessionData)
	if err != nil {
		return nil, nil, err
	}
	return challenge, state, nil
}

func (v *WebAuthnVerifier) VerifyRegistration(ctx context.Context, clientResponse, state []byte, subject usecase.RegistrationSubject, nameAvailable func(context.Context, string) (bool, error)) (*usecase.BoundCredential, error) {
	var sessionData webauthn.SessionData
	if err := json.Unmarshal(state, &sessionData); err != nil {
		return nil, pkgerrors.Wrap(err, "corrupted registration state")
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(clientResponse))
	if err != nil {
		return nil, domain.VerificationError{Message: err.Error()}
	}

	// The claimed identity must not already be registered; evaluated here,
	// not at challenge time, so two racing registrations of one username
	// cannot both pass.
	available, err := nameAvailable(ctx, string(sessionData.UserID))
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.VerificationError{Message: "username is already taken"}
	}

	user := ceremonyUser{
		id:          sessionData.UserID,
		name:        subject.Name,
		displayName: subject.DisplayName,
	}

	credential, err := v.wa.CreateCredential(user, sessionData, parsed)
	if err != nil {
		return nil, domain.VerificationError{Message: err.Error()}
	}

	return &usecase.BoundCredential{
		UserHandle: sessionData.UserID,
		PublicKey:  credential.PublicKey,
		Descriptor: domain.CredentialDescriptor{
			ID:         credential.ID,
			Type:       string(protocol.PublicKeyCredentialType),
			Transports: transportsToStrings(credential.Transport),
		},
	}, nil
}

func (v *WebAuthnVerifier) IssueAssertionChallenge(ctx context.Context, allow []domain.CredentialDescriptor) (json.RawMessage, []byte, error) {
	// BeginLogin derives the allow list from the user's credentials; only
	// the descriptors matter at this stage.
	user := ceremonyUser{
		id:          []byte("pending"),
		credentials: credentialsFromDescriptors(allow),
	}

	assertion, sessionData, err := v.wa.BeginLogin(user)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "failed to issue assertion challenge")
	}

	challenge, err := json.Marshal(assertion)
	if err != nil {
		return nil, nil, err
	}
	state, err := json.Marshal(sessionData)
	if err != nil {
		return nil, nil, err
	}
	return challenge, state, nil
}

func (v *WebAuthnVerifier) CredentialIDOf(clientResponse []byte) ([]byte, error) {
	var raw struct {
		RawID protocol.URLEncodedBase64 `json:"rawId"`
	}
	if err := json.Unmarshal(clientResponse, &raw); err != nil {
		return nil, err
	}
	if len(raw.RawID) == 0 {
		return nil, pkgerrors.New("client response carries no credential ID")
	}
	return raw.RawID, nil
}

func (v *WebAuthnVerifier) VerifyAssertion(ctx context.Context, clientResponse, state []byte, subject usecase.AssertionSubject, ownership func(ctx context.Context, userHandle, credentialID []byte) (bool, error)) (*usecase.AssertionResult, error) {
	var sessionData webauthn.SessionData
	if err := json.Unmarshal(state, &sessionData); err != nil {
		return nil, pkgerrors.Wrap(err, "corrupted assertion state")
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(clientResponse))
	if err != nil {
		return nil, domain.VerificationError{Message: err.Error()}
	}

	if len(parsed.Response.UserHandle) > 0 {
		owned, err := ownership(ctx, parsed.Response.UserHandle, parsed.RawID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, domain.VerificationError{Message: "user handle does not own the presented credential"}
		}
	}

	// The challenge was issued before the actor was known; bind the state to
	// the resolved subject now.
	sessionData.UserID = subject.Identity.SubjectID

	user := ceremonyUser{
		id:          subject.Identity.SubjectID,
		credentials: credentialsFromIdentity(subject.Identity),
	}

	credential, err := v.wa.ValidateLogin(user, sessionData, parsed)
	if err != nil {
		return nil, domain.VerificationError{Message: err.Error()}
	}

	return &usecase.AssertionResult{NewCounter: credential.Authenticator.SignCount}, nil
}

var _ usecase.CredentialVerifier = (*WebAuthnVerifier)(nil)

// ceremonyUser adapts a challenge subject to the library's user interface.
type ceremonyUser struct {
	id          []byte
	name        string
	displayName string
	credentials []webauthn.Credential
}

func (u ceremonyUser) WebAuthnID() []byte                         { return u.id }
func (u ceremonyUser) WebAuthnName() string                       { return u.name }
func (u ceremonyUser) WebAuthnDisplayName() string                { return u.displayName }
func (u ceremonyUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

// WebAuthnIcon satisfies the webauthn.User interface of go-webauthn v0.10.x;
// the value is deprecated and ignored by the library.
func (u ceremonyUser) WebAuthnIcon() string { return "" }

func toProtocolDescriptors(descriptors []domain.CredentialDescriptor) []protocol.CredentialDescriptor {
	out := make([]protocol.CredentialDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: d.ID,
			Transport:    transportsFromStrings(d.Transports),
		})
	}
	return out
}

func credentialsFromDescriptors(descriptors []domain.CredentialDescriptor) []webauthn.Credential {
	out := make([]webauthn.Credential, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, webauthn.Credential{
			ID:        d.ID,
			Transport: transportsFromStrings(d.Transports),
		})
	}
	return out
}

func credentialsFromIdentity(identity domain.CredentialIdentity) []webauthn.Credential {
	out := make([]webauthn.Credential, 0, len(identity.Credentials))
	for _, c := range identity.Credentials {
		out = append(out, webauthn.Credential{
			ID:        c.Descriptor.ID,
			PublicKey: c.PublicKey,
			Transport: transportsFromStrings(c.Descriptor.Transports),
			Authenticator: webauthn.Authenticator{
				SignCount: identity.Counter,
			},
		})
	}
	return out
}

func transportsToStrings(transports []protocol.AuthenticatorTransport) []string {
	out := make([]string, 0, len(transports))
	for _, t := range transports {
		out = append(out, string(t))
	}
	return out
}

func transportsFromStrings(transports []string) []protocol.AuthenticatorTransport {
	out := make([]protocol.AuthenticatorTransport, 0, len(transports))
	for _, t := range transports {
		out = append(out, protocol.AuthenticatorTransport(t))
	}
	return out
}
