package relay

import "crypto/subtle"

// secureCompare compares two opaque authorization strings in constant
// time, following the teacher's internal/auth.secureCompare idiom
// (crypto/subtle.ConstantTimeCompare) rather than a plain ==, since
// the compared value is a credential (an Authorization header) even
// though the policy itself does no scheme parsing (§4.8).
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// AuthPolicy is the single authorization policy shared by source,
// sink and admin requests (C9 / §4.8). It is immutable after
// construction and safe for concurrent use.
type AuthPolicy struct {
	adminAuthorization *string
}

func NewAuthPolicy(adminAuthorization *string) AuthPolicy {
	return AuthPolicy{adminAuthorization: adminAuthorization}
}

// IsAdmin reports whether authorization matches the configured admin
// credential. A nil admin_authorization means no request is ever
// admin.
func (p AuthPolicy) IsAdmin(authorization string) bool {
	if p.adminAuthorization == nil {
		return false
	}
	return secureCompare(authorization, *p.adminAuthorization)
}

// IsAuthorizedSource implements: is_admin || mount.source_auth is
// None || authorization == mount.source_auth.
func (p AuthPolicy) IsAuthorizedSource(authorization string, mount *Mount) bool {
	if p.IsAdmin(authorization) {
		return true
	}
	sourceAuth := mount.SourceAuth()
	if sourceAuth == nil {
		return true
	}
	return secureCompare(authorization, *sourceAuth)
}

// IsAuthorizedSub implements: mount.sub_auth is None || authorization
// == mount.sub_auth. Notably does not consult is_admin - §4.8 only
// grants admin a bypass on the source and admin-metadata paths.
func (p AuthPolicy) IsAuthorizedSub(authorization string, mount *Mount) bool {
	subAuth := mount.SubAuth()
	if subAuth == nil {
		return true
	}
	return secureCompare(authorization, *subAuth)
}
