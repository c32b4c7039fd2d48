package listing

import "strings"

// Role of an acting user. Admins, agents and company admins may mutate
// any listing unconditionally; there is no finer-grained resource
// check for them.
type Role string

const (
	RoleUser         Role = "user"
	RoleAgent        Role = "agent"
	RoleCompanyAdmin Role = "company_admin"
	RoleAdmin        Role = "admin"
)

// Actor is whoever is attempting a mutation.
type Actor struct {
	ID    string
	Email string
	Phone string
	Role  Role
}

// CanMutate decides whether the actor may modify the listing.
//
// Primary-origin listings are matched by user ID. Free-origin listings
// have no account behind them, so ownership is inferred from the
// submission contact details: a case-insensitive email match or a
// last-10-digit phone match. That phone heuristic is best effort, not
// an identity guarantee: two users sharing a digit suffix can
// false-positive. Guests wanting a stronger claim go through the
// OTP-bound ownership token issued by the auth package.
func CanMutate(actor Actor, l Listing) bool {
	switch actor.Role {
	case RoleAdmin, RoleAgent, RoleCompanyAdmin:
		return true
	}

	switch l.Origin {
	case OriginPrimary:
		return actor.ID != "" && actor.ID == l.UserID
	case OriginFree:
		if l.Contact == nil {
			return false
		}
		if emailsMatch(actor.Email, l.Contact.Email) {
			return true
		}
		return phonesMatch(actor.Phone, l.Contact.Phone)
	}
	return false
}

func emailsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && a == b
}

// phonesMatch compares the trailing 10 digits of both numbers,
// accepting containment in either direction so that numbers stored
// with or without a country prefix still match.
func phonesMatch(a, b string) bool {
	da, db := digitsOnly(a), digitsOnly(b)
	if len(da) < 10 || len(db) < 10 {
		return false
	}
	ta, tb := da[len(da)-10:], db[len(db)-10:]
	return strings.Contains(da, tb) || strings.Contains(db, ta)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
