package metadata

// AccessPolicy decides what an identity may see and mutate.
//
// Two roles exist: admin (identity in the configured allow-list) and
// standard. Admins see and mutate every record; standard identities only
// their own. Share grants extend read access to individual files and are
// evaluated by the sharing operations, not here.
//
// The policy is pure: it holds the admin set and nothing else, so tests can
// construct one with fake roles.
type AccessPolicy struct {
	admins map[string]struct{}
}

// NewAccessPolicy builds a policy from the configured admin identities.
func NewAccessPolicy(admins []string) *AccessPolicy {
	set := make(map[string]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}
	return &AccessPolicy{admins: set}
}

// IsAdmin reports whether identity is in the admin allow-list.
func (p *AccessPolicy) IsAdmin(identity string) bool {
	_, ok := p.admins[identity]
	return ok
}

// CanView reports whether identity may see a record owned by owner.
func (p *AccessPolicy) CanView(identity, owner string) bool {
	return identity == owner || p.IsAdmin(identity)
}

// CanMutate reports whether identity may update or delete a record owned by
// owner. Same rule as visibility: ownership or admin.
func (p *AccessPolicy) CanMutate(identity, owner string) bool {
	return identity == owner || p.IsAdmin(identity)
}
