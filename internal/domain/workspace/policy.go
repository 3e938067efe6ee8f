package workspace

// Callers enforce the members.invite and members.manage permissions before
// these rules run. The rules here only cover what a permission grant cannot
// lift: admins are managed by the owner alone, and the owner is immutable.

// ChangeRole applies a role change requested by actor on target. Only the
// owner grants or revokes admin, and the owner role moves exclusively
// through TransferOwnership.
func ChangeRole(actor, target *Member, newRole Role) error {
	if !newRole.IsValid() {
		return ErrInvalidRole
	}
	if newRole.IsOwner() {
		return ErrOwnerRoleNotAssignable
	}
	if err := checkManageable(actor, target); err != nil {
		return err
	}
	if (newRole.IsAdmin() || target.role.IsAdmin()) && !actor.role.IsOwner() {
		return ErrInsufficientRole
	}
	target.setRole(newRole)
	return nil
}

// ChangeStatus suspends or reactivates target.
func ChangeStatus(actor, target *Member, status MemberStatus) error {
	if !status.IsValid() {
		return ErrInvalidMemberStatus
	}
	if err := checkManageable(actor, target); err != nil {
		return err
	}
	if target.role.IsAdmin() && !actor.role.IsOwner() {
		return ErrInsufficientRole
	}
	target.setStatus(status)
	return nil
}

// CanRemove reports whether actor may remove target. Any non-owner may leave.
func CanRemove(actor, target *Member) error {
	if target.role.IsOwner() {
		return ErrOwnerImmutable
	}
	if actor.id == target.id {
		return nil
	}
	if err := checkManageable(actor, target); err != nil {
		return err
	}
	if target.role.IsAdmin() && !actor.role.IsOwner() {
		return ErrInsufficientRole
	}
	return nil
}

// CanInvite reports whether actor may invite someone with role.
func CanInvite(actor *Member, role Role) error {
	if !role.IsInvitable() {
		return ErrInvalidRole
	}
	if !actor.IsActive() {
		return ErrInsufficientRole
	}
	if role.IsAdmin() && !actor.role.IsOwner() {
		return ErrInsufficientRole
	}
	return nil
}

// TransferOwnership makes to the owner and demotes from to admin.
func TransferOwnership(ws *Workspace, from, to *Member) error {
	if !from.role.IsOwner() || ws.ownerID != from.userID {
		return ErrInsufficientRole
	}
	if from.id == to.id {
		return ErrOwnerImmutable
	}
	if !to.IsActive() {
		return ErrInvalidMemberStatus
	}
	from.setRole(RoleAdmin)
	to.setRole(RoleOwner)
	ws.TransferTo(to.userID)
	return nil
}

func checkManageable(actor, target *Member) error {
	if !actor.IsActive() {
		return ErrInsufficientRole
	}
	if target.role.IsOwner() {
		return ErrOwnerImmutable
	}
	if actor.id == target.id {
		return ErrInsufficientRole
	}
	return nil
}
