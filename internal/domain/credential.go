package domain

// CredentialDescriptor is a transport-agnostic reference to one physical
// authenticator registration. Descriptor IDs are unique across the whole
// system.
type CredentialDescriptor struct {
	ID         []byte
	Type       string
	Transports []string
}

// Credential is a bound authenticator.
type Credential struct {
	ID         int64
	UserHandle []byte
	PublicKey  []byte
	Descriptor CredentialDescriptor
}

// CredentialIdentity is the sign-in identity of a local actor: a stable byte
// subject, its bound credentials and the authenticator signature counter.
type CredentialIdentity struct {
	SubjectID   []byte
	Credentials []Credential
	Counter     uint32
}

// Descriptors returns the descriptors of all bound credentials, used to
// exclude known authenticators from registration challenges and to offer
// them for assertion challenges.
func (i CredentialIdentity) Descriptors() []CredentialDescriptor {
	descriptors := make([]CredentialDescriptor, 0, len(i.Credentials))
	for _, c := range i.Credentials {
		descriptors = append(descriptors, c.Descriptor)
	}
	return descriptors
}
