// Package auth bridges stored user accounts and the pure RBAC resolver.
//
// It loads the account and, for custom-role users, the role's base
// permission table, then delegates the actual decision to internal/rbac.
// The API layer calls it before every CRUD operation.
package auth
