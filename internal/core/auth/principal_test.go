package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func Test_CanAccessUser(t *testing.T) {
	user5 := &Principal{ID: 5, Username: "ann", Authorities: []string{"USER"}}
	admin := &Principal{ID: 1, Username: "root", Authorities: []string{"USER", AuthorityAdmin}}

	tests := []struct {
		name      string
		principal *Principal
		userID    *int64
		want      bool
	}{
		{name: "self_access_is_allowed", principal: user5, userID: ptr(5), want: true},
		{name: "other_user_is_denied", principal: user5, userID: ptr(6), want: false},
		{name: "admin_may_access_any_user", principal: admin, userID: ptr(6), want: true},
		{name: "anonymous_is_denied", principal: nil, userID: ptr(5), want: false},
		{name: "unparsable_id_denied_for_user", principal: user5, userID: nil, want: false},
		{name: "unparsable_id_allowed_for_admin", principal: admin, userID: nil, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccessUser(tc.principal, tc.userID))
		})
	}
}

func Test_Principal_HasAuthority_NilSafe(t *testing.T) {
	var p *Principal
	assert.False(t, p.HasAuthority(AuthorityAdmin))
	assert.False(t, p.IsAdmin())
}
