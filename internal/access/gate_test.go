package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var staff = []string{"1447712026775392357", "1467220717056823369", "1465730843090616448"}

func TestIsAuthorized(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{
			name: "owner without roles",
			ctx:  Context{InvokerID: "owner", OwnerID: "owner", StaffRoleIDs: staff},
			want: true,
		},
		{
			name: "owner with unrelated roles",
			ctx:  Context{InvokerID: "owner", InvokerRoleIDs: []string{"x"}, OwnerID: "owner", StaffRoleIDs: staff},
			want: true,
		},
		{
			name: "head runner",
			ctx:  Context{InvokerID: "u1", InvokerRoleIDs: []string{"x", staff[0]}, OwnerID: "owner", StaffRoleIDs: staff},
			want: true,
		},
		{
			name: "executive runner",
			ctx:  Context{InvokerID: "u1", InvokerRoleIDs: []string{staff[1]}, OwnerID: "owner", StaffRoleIDs: staff},
			want: true,
		},
		{
			name: "archivist runner",
			ctx:  Context{InvokerID: "u1", InvokerRoleIDs: []string{staff[2]}, OwnerID: "owner", StaffRoleIDs: staff},
			want: true,
		},
		{
			name: "regular member",
			ctx:  Context{InvokerID: "u1", InvokerRoleIDs: []string{"x", "y"}, OwnerID: "owner", StaffRoleIDs: staff},
			want: false,
		},
		{
			name: "no roles at all",
			ctx:  Context{InvokerID: "u1", OwnerID: "owner", StaffRoleIDs: staff},
			want: false,
		},
		{
			name: "unknown owner does not match empty invoker",
			ctx:  Context{StaffRoleIDs: staff},
			want: false,
		},
		{
			name: "no staff roles configured",
			ctx:  Context{InvokerID: "u1", InvokerRoleIDs: []string{"x"}, OwnerID: "owner"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthorized(tt.ctx))
		})
	}
}
