package auth

const AuthorityAdmin = "ADMIN"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID          int64
	Username    string
	Authorities []string
	// Stamp fingerprints the credential the principal signed in with.
	// A password change gives the account a new stamp.
	Stamp string
}

func (p *Principal) HasAuthority(name string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool { return p.HasAuthority(AuthorityAdmin) }

// CanAccessUser decides whether p may read or modify the user resource
// owned by userID. A nil userID means the path did not name a valid user id,
// in which case only administrators pass.
func CanAccessUser(p *Principal, userID *int64) bool {
	if p == nil {
		return false
	}
	if userID != nil && p.ID == *userID {
		return true
	}
	return p.IsAdmin()
}
