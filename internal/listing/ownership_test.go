package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate_PrimaryOwner(t *testing.T) {
	l := Listing{Origin: OriginPrimary, UserID: "U1"}

	assert.True(t, CanMutate(Actor{ID: "U1", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{ID: "U2", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{Role: RoleUser}, l), "anonymous actor never owns a primary listing")
}

func TestCanMutate_RoleEscalation(t *testing.T) {
	l := Listing{Origin: OriginPrimary, UserID: "someone-else"}
	for _, role := range []Role{RoleAdmin, RoleAgent, RoleCompanyAdmin} {
		assert.True(t, CanMutate(Actor{ID: "X", Role: role}, l), "role %s", role)
	}
}

func TestCanMutate_FreeEmailCaseInsensitive(t *testing.T) {
	l := Listing{Origin: OriginFree, Contact: &ContactInfo{Email: "a@b.com"}}

	assert.True(t, CanMutate(Actor{Email: "A@b.com", Role: RoleUser}, l))
	assert.True(t, CanMutate(Actor{Email: "  a@B.COM ", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{Email: "c@b.com", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{Email: "", Role: RoleUser}, l), "two empty emails must not match")
}

func TestCanMutate_FreePhoneLastTenDigits(t *testing.T) {
	l := Listing{Origin: OriginFree, Contact: &ContactInfo{Phone: "+91 98765-43210"}}

	assert.True(t, CanMutate(Actor{Phone: "9876543210", Role: RoleUser}, l))
	assert.True(t, CanMutate(Actor{Phone: "919876543210", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{Phone: "9876543211", Role: RoleUser}, l))
	assert.False(t, CanMutate(Actor{Phone: "43210", Role: RoleUser}, l), "short fragments never match")
}

func TestCanMutate_FreeWithoutContact(t *testing.T) {
	l := Listing{Origin: OriginFree}
	assert.False(t, CanMutate(Actor{Email: "a@b.com", Phone: "9876543210", Role: RoleUser}, l))
}
