package domain

// SubjectType differentiates guest vs staff identities on inbound tokens.
type SubjectType string

const (
	SubjectTypeGuest SubjectType = "GUEST"
	SubjectTypeStaff SubjectType = "STAFF"
)
