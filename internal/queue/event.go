// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// Event kinds published by the service.
const (
	EventUserCreated = "user.created"
	EventUserLogin   = "user.login"
	EventAdminLogin  = "admin.login"
	EventUserDeleted = "user.deleted"
)

// AuthEvent is published when a security-relevant action completes: a user
// row is created or deleted, or a login succeeds. It carries enough
// information for downstream consumers to log or alert without querying the
// primary database. Passwords, hashes and tokens are never included.
type AuthEvent struct {
	Kind       string `json:"kind"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
