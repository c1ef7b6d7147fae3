package models

// Role is a member's privilege level within one server.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Action is a privileged operation gated by role.
type Action string

const (
	ActionCreateChannel Action = "create-channel"
	ActionDeleteChannel Action = "delete-channel"
	ActionSetRole       Action = "set-role"
)

var roleRank = map[Role]int{
	RoleMember:    0,
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleOwner:     3,
}

// minimum role required per action, so every endpoint shares one table
// instead of carrying its own allow-list
var actionFloor = map[Action]Role{
	ActionCreateChannel: RoleAdmin,
	ActionDeleteChannel: RoleAdmin,
	ActionSetRole:       RoleOwner,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Assignable reports whether r can be given to a member through the
// role-change operation. Ownership is set at server creation and never
// reassigned.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleMember
}

// Can reports whether a member holding r may perform action.
func (r Role) Can(action Action) bool {
	floor, ok := actionFloor[action]
	if !ok {
		return false
	}
	return roleRank[r] >= roleRank[floor]
}
