// Package auth implements the credential and session subsystem: a keyed
// credential hasher, registration and login, session-token issuance and
// validation, and the authorization gates that protect routes.
//
// Passwords are stored as HMAC-SHA256 digests of (salt, password) keyed by
// a process-wide secret; the plaintext never leaves the login path. Sessions
// are opaque bearer tokens stored on the user record. A token is not
// self-verifying: validation is a store lookup, and each login overwrites
// the previous token, so an account has at most one live session.
//
// Typical wiring:
//
//	hasher, _ := auth.NewHasher(cfg.Auth.SecretKey)
//	service := auth.NewService(usersRepo, hasher)
//	middleware := auth.NewMiddleware(service, cfg.Auth.CookieName)
//
//	protected.Use(middleware.RequireSession())
//	adminOnly.Use(middleware.RequireRole(entities.UserRoleAdmin))
package auth
