package domain

// Role is the access level carried in the user's identity and access token.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleViewer     Role = "VIEWER"
)

// Capability names an action a role may perform. Authorization checks go
// through Role.Can everywhere — the console commands and the status machine
// consult the same table, so policy is defined exactly once.
type Capability string

const (
	CapViewOrders        Capability = "orders.view"
	CapUpdateOrderStatus Capability = "orders.update_status"
	CapManageFlags       Capability = "admin.manage_flags"
	CapSyncChannels      Capability = "admin.sync_channels"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleSuperAdmin: {
		CapViewOrders:        {},
		CapUpdateOrderStatus: {},
		CapManageFlags:       {},
		CapSyncChannels:      {},
	},
	RoleAdmin: {
		CapViewOrders:        {},
		CapUpdateOrderStatus: {},
	},
	RoleViewer: {
		CapViewOrders: {},
	},
}

// Can reports whether the role grants the capability. Unknown roles have no
// capabilities (fail closed).
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// Identity is the authenticated user as reported by the backend. It is
// replaced wholesale on login and refresh, never partially mutated.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}
