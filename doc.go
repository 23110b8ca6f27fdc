// Package auth implements the authentication and tenancy core of a
// multi-tenant SaaS backend: company registration, credential checks for
// tenant users and platform admins, JWT issuance and verification, the
// company approval lifecycle, and company scoped CRUD for customers and
// products.
//
// Identities:
//   - Tenant users belong to exactly one Company and carry the
//     company_user user type in their tokens. Platform admins are a separate
//     collection with the platform_admin user type. The two never share a
//     base type; consumers switch on UserType.
//
// Company lifecycle:
//   - Company.Status moves through pending, approved, rejected, and
//     suspended. CompanyStateMachine owns the transition graph and keeps
//     ApprovedAt/ApprovedByID set only while a company is approved.
//
// Tokens:
//   - Access and refresh tokens are HS256 JWTs signed with two distinct
//     secrets. Verification is pure (signature plus expiry) and returns nil
//     on any failure. Nothing is stored server side.
//
// Tenancy:
//   - Every tenant scoped service method takes the company id derived from
//     the verified access token and filters all store calls by it.
package auth
