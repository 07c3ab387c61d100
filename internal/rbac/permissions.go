package rbac

// EntityType identifies a governed CRM entity type.
type EntityType string

// Governed entity types. Permission tables are keyed by these values;
// an entity type not listed here is not subject to RBAC.
const (
	EntityOrganisations EntityType = "organisations"
	EntityContacts      EntityType = "contacts"
	EntityDeals         EntityType = "deals"
	EntityLeads         EntityType = "leads"
	EntityTasks         EntityType = "tasks"
	EntityPipelines     EntityType = "pipelines"
	EntityContracts     EntityType = "contracts"
)

// AllEntityTypes lists every governed entity type. Role tables must carry
// an entry for each of these.
var AllEntityTypes = []EntityType{
	EntityOrganisations,
	EntityContacts,
	EntityDeals,
	EntityLeads,
	EntityTasks,
	EntityPipelines,
	EntityContracts,
}

// Action is a CRUD capability requested against an entity type.
type Action string

// Supported actions. ReadAll is not an action: it is a permission flag
// widening the scope of Read, Update and Delete.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EntityPermissions is the set of capability flags a role grants on one
// entity type. ReadAll widens Read/Update/Delete beyond assigned entities.
type EntityPermissions struct {
	Create  bool `json:"canCreate"`
	Read    bool `json:"canRead"`
	Update  bool `json:"canUpdate"`
	Delete  bool `json:"canDelete"`
	ReadAll bool `json:"canReadAll"`
}

// Allows reports whether the base flag for the given action is set.
func (p EntityPermissions) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return p.Create
	case ActionRead:
		return p.Read
	case ActionUpdate:
		return p.Update
	case ActionDelete:
		return p.Delete
	default:
		return false
	}
}

// RolePermissions maps every governed entity type to its permission flags.
type RolePermissions map[EntityType]EntityPermissions

// PermissionOverride is a partial, per-entity patch applied on top of a
// custom role's base permissions. Only non-nil fields replace the base
// value; nil fields leave the base untouched.
type PermissionOverride struct {
	Create  *bool `json:"canCreate,omitempty"`
	Read    *bool `json:"canRead,omitempty"`
	Update  *bool `json:"canUpdate,omitempty"`
	Delete  *bool `json:"canDelete,omitempty"`
	ReadAll *bool `json:"canReadAll,omitempty"`
}

// SystemRole is a built-in, non-editable role.
type SystemRole string

// Built-in roles.
const (
	RoleAdmin                SystemRole = "ADMIN"
	RoleSeniorSalesManager   SystemRole = "SENIOR_SALES_MANAGER"
	RoleJuniorSalesManager   SystemRole = "JUNIOR_SALES_MANAGER"
	RoleLogisticsCoordinator SystemRole = "LOGISTICS_COORDINATOR"
	RoleAccountant           SystemRole = "ACCOUNTANT"
)

// User is a user carrying a fixed system role. AssignedEntityIDs scopes
// Read/Update/Delete when the role lacks ReadAll on an entity type.
type User struct {
	ID                string
	Role              SystemRole
	AssignedEntityIDs []string
}

// CRMUser is a user carrying a tenant-defined custom role, optionally
// patched per entity type by PermissionOverrides.
type CRMUser struct {
	ID                  string
	CustomRoleID        string
	AssignedEntityIDs   []string
	PermissionOverrides map[EntityType]PermissionOverride
}

// allPermissions grants every flag on every entity type.
func allPermissions() RolePermissions {
	perms := make(RolePermissions, len(AllEntityTypes))
	for _, e := range AllEntityTypes {
		perms[e] = EntityPermissions{Create: true, Read: true, Update: true, Delete: true, ReadAll: true}
	}

	return perms
}

// systemRolePermissions is the fixed permission table for built-in roles.
// It is not user-editable; custom roles live in the database instead.
var systemRolePermissions = map[SystemRole]RolePermissions{
	RoleAdmin: allPermissions(),

	RoleSeniorSalesManager: {
		EntityOrganisations: {Create: true, Read: true, Update: true, Delete: true, ReadAll: true},
		EntityContacts:      {Create: true, Read: true, Update: true, Delete: true, ReadAll: true},
		EntityDeals:         {Create: true, Read: true, Update: true, Delete: true, ReadAll: true},
		EntityLeads:         {Create: true, Read: true, Update: true, Delete: true, ReadAll: true},
		EntityTasks:         {Create: true, Read: true, Update: true, Delete: true, ReadAll: true},
		EntityPipelines:     {Create: false, Read: true, Update: true, Delete: false, ReadAll: true},
		EntityContracts:     {Create: true, Read: true, Update: true, Delete: false, ReadAll: true},
	},

	RoleJuniorSalesManager: {
		EntityOrganisations: {Create: true, Read: true, Update: true, Delete: false, ReadAll: false},
		EntityContacts:      {Create: true, Read: true, Update: true, Delete: false, ReadAll: false},
		EntityDeals:         {Create: true, Read: true, Update: true, Delete: false, ReadAll: false},
		EntityLeads:         {Create: true, Read: true, Update: true, Delete: false, ReadAll: false},
		EntityTasks:         {Create: true, Read: true, Update: true, Delete: true, ReadAll: false},
		EntityPipelines:     {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityContracts:     {Create: false, Read: true, Update: false, Delete: false, ReadAll: false},
	},

	RoleLogisticsCoordinator: {
		EntityOrganisations: {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityContacts:      {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityDeals:         {Create: false, Read: true, Update: true, Delete: false, ReadAll: false},
		EntityLeads:         {Create: false, Read: false, Update: false, Delete: false, ReadAll: false},
		EntityTasks:         {Create: true, Read: true, Update: true, Delete: true, ReadAll: false},
		EntityPipelines:     {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityContracts:     {Create: false, Read: true, Update: true, Delete: false, ReadAll: false},
	},

	RoleAccountant: {
		EntityOrganisations: {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityContacts:      {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityDeals:         {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityLeads:         {Create: false, Read: false, Update: false, Delete: false, ReadAll: false},
		EntityTasks:         {Create: false, Read: true, Update: false, Delete: false, ReadAll: false},
		EntityPipelines:     {Create: false, Read: true, Update: false, Delete: false, ReadAll: true},
		EntityContracts:     {Create: true, Read: true, Update: true, Delete: false, ReadAll: true},
	},
}
