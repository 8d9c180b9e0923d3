package cart

import (
	"fmt"

	"github.com/google/uuid"
)

// OwnerKind discriminates the two cart identities
type OwnerKind string

const (
	OwnerKindUser    OwnerKind = "user"
	OwnerKindSession OwnerKind = "session"
)

// Owner is the identity a cart belongs to: an authenticated user or an
// anonymous session, never both and never neither. The tagged union makes
// the ambiguous both-set/both-null states unrepresentable.
type Owner struct {
	kind      OwnerKind
	userID    uuid.UUID
	sessionID string
}

// UserOwner creates an owner for an authenticated user
func UserOwner(userID uuid.UUID) Owner {
	return Owner{kind: OwnerKindUser, userID: userID}
}

// SessionOwner creates an owner for an anonymous session
func SessionOwner(sessionID string) Owner {
	return Owner{kind: OwnerKindSession, sessionID: sessionID}
}

// Kind returns the owner kind
func (o Owner) Kind() OwnerKind {
	return o.kind
}

// IsUser reports whether the owner is an authenticated user
func (o Owner) IsUser() bool {
	return o.kind == OwnerKindUser
}

// IsSession reports whether the owner is an anonymous session
func (o Owner) IsSession() bool {
	return o.kind == OwnerKindSession
}

// UserID returns the user ID when the owner is a user
func (o Owner) UserID() (uuid.UUID, bool) {
	if o.kind != OwnerKindUser {
		return uuid.Nil, false
	}
	return o.userID, true
}

// SessionID returns the session ID when the owner is a session
func (o Owner) SessionID() (string, bool) {
	if o.kind != OwnerKindSession {
		return "", false
	}
	return o.sessionID, true
}

// IsZero reports whether no identity is present. A zero Owner is invalid
// for every cart operation.
func (o Owner) IsZero() bool {
	switch o.kind {
	case OwnerKindUser:
		return o.userID == uuid.Nil
	case OwnerKindSession:
		return o.sessionID == ""
	default:
		return true
	}
}

// String returns a loggable representation
func (o Owner) String() string {
	switch o.kind {
	case OwnerKindUser:
		return fmt.Sprintf("user:%s", o.userID)
	case OwnerKindSession:
		return fmt.Sprintf("session:%s", o.sessionID)
	default:
		return "owner:none"
	}
}
