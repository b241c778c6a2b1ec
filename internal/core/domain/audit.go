package domain

import "time"

// Audit event kinds. One per security-relevant transition.
const (
	AuditRegistered          = "account.registered"
	AuditRegistrationFailed  = "account.registration_failed"
	AuditLogin               = "account.login"
	AuditLogout              = "account.logout"
	AuditEmailVerified       = "account.email_verified"
	AuditVerificationResent  = "account.verification_resent"
	AuditApproved            = "account.approved"
	AuditSuspended           = "account.suspended"
	AuditReactivated         = "account.reactivated"
	AuditDeleted             = "account.deleted"
	AuditPermissionOverride  = "permissions.override"
	AuditPasswordResetIssued = "account.password_reset_issued"
	AuditPasswordReset       = "account.password_reset"
)

// Provenance carries the request metadata attached to security events.
type Provenance struct {
	IP        string
	UserAgent string
}

// AuditEntry is one immutable record in the append-only security log.
type AuditEntry struct {
	ID        string            `json:"id" bson:"_id"`
	Kind      string            `json:"kind" bson:"kind"`
	SubjectID string            `json:"subject_id" bson:"subject_id"`
	ActorID   string            `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	IP        string            `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}
