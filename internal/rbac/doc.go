// Package rbac implements role-based access control for the CRM entities.
//
// It answers one question: may user U perform action A on entity type T,
// optionally against a concrete entity instance. Two user shapes are
// supported: users carrying a fixed system role, and CRM users carrying a
// tenant-defined custom role plus optional per-user permission overrides.
//
// The package is pure. It performs no I/O and holds no state; callers load
// users and roles from the database and pass them in.
package rbac
