package rbac

// RolePermissionsFor returns the fixed permission table for a system role.
// An unrecognized role yields an *UnknownRoleError.
func RolePermissionsFor(role SystemRole) (RolePermissions, error) {
	perms, ok := systemRolePermissions[role]
	if !ok {
		return nil, &UnknownRoleError{Role: role}
	}

	return perms, nil
}

// CanAccessEntity reports whether a system-role user may perform action on
// the given entity type. entityID and ownerID qualify a concrete entity
// instance and may be empty when no instance is involved (e.g. create).
//
// The base permission flag decides first: a role without the capability is
// denied outright, assignments cannot widen it. When the flag is set,
// Read/Update/Delete against an instance additionally require ReadAll,
// assignment of the instance, or ownership.
func CanAccessEntity(user User, entity EntityType, action Action, entityID, ownerID string) bool {
	perms, err := RolePermissionsFor(user.Role)
	if err != nil {
		return false
	}

	return canAccess(perms, user.ID, user.AssignedEntityIDs, entity, action, entityID, ownerID)
}

// ResolvePermissions merges a CRM user's permission overrides onto the base
// permissions of their custom role. Only fields present in an override
// replace the base value; entity types without overrides pass through
// unchanged. The input maps are not mutated.
func ResolvePermissions(user CRMUser, base RolePermissions) RolePermissions {
	resolved := make(RolePermissions, len(base))
	for entity, perms := range base {
		resolved[entity] = perms
	}

	for entity, override := range user.PermissionOverrides {
		perms := resolved[entity]

		if override.Create != nil {
			perms.Create = *override.Create
		}
		if override.Read != nil {
			perms.Read = *override.Read
		}
		if override.Update != nil {
			perms.Update = *override.Update
		}
		if override.Delete != nil {
			perms.Delete = *override.Delete
		}
		if override.ReadAll != nil {
			perms.ReadAll = *override.ReadAll
		}

		resolved[entity] = perms
	}

	return resolved
}

// CanCRMUserAccessEntity is CanAccessEntity for custom-role users: the same
// decision algorithm, run over the user's resolved permissions.
func CanCRMUserAccessEntity(user CRMUser, base RolePermissions, entity EntityType, action Action, entityID, ownerID string) bool {
	resolved := ResolvePermissions(user, base)

	return canAccess(resolved, user.ID, user.AssignedEntityIDs, entity, action, entityID, ownerID)
}

// canAccess is the shared decision core.
func canAccess(perms RolePermissions, userID string, assigned []string, entity EntityType, action Action, entityID, ownerID string) bool {
	entityPerms, ok := perms[entity]
	if !ok {
		return false
	}

	// A hard denial at the role layer cannot be overridden by assignment.
	if !entityPerms.Allows(action) {
		return false
	}

	// Create needs no instance-level check.
	if action == ActionCreate {
		return true
	}

	// ReadAll implies visibility for read/update/delete.
	if entityPerms.ReadAll {
		return true
	}

	if entityID != "" {
		for _, id := range assigned {
			if id == entityID {
				return true
			}
		}
	}

	return ownerID != "" && ownerID == userID
}
