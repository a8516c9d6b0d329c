package driven

// Sessions is the session provider boundary. The core only depends on "is
// there a current user": Verify answers that for a presented token, Issue
// creates one after the driving layer has authenticated the user.
type Sessions interface {
	// Issue creates a session token for the given user identity.
	Issue(user string) (string, error)

	// Verify checks a session token and returns the user identity it was
	// issued for, or an error when the token is missing, malformed,
	// expired, or signed with a different secret.
	Verify(token string) (string, error)
}
