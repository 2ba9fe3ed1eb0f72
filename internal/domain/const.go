package domain

const (
	SessionIDCtxKey     = "sb-sessionID"
	RequesterNameCtxKey = "sb-requesterUsername"
)

const (
	// SessionCookieName scopes pending ceremony state to one browser session.
	SessionCookieName = "sb_sid"
	// AuthCookieName carries the opaque authenticated-session token.
	AuthCookieName = "sb_session"
)

// Ceremony slot names. Each session holds at most one pending challenge per
// slot, consumed on first read.
const (
	CeremonySlotRegistration = "registration"
	CeremonySlotAssertion    = "assertion"
)
