// Package auth provides credential checks, API tokens and the gin
// middleware that turns a bearer token into a user identity.
//
// Tokens are random, prefixed with "bks_", shown to the user once and stored
// only as a SHA-256 hash. A user holds at most one token; issuing a new one
// replaces the old.
//
// # Configuration
//
//	AUTH_TOKEN_EXPIRY=720h  # 0 disables expiry
//	AUTH_BCRYPT_COST=12     # bcrypt cost factor
//
// # Usage
//
//	svc := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(svc, logger)
//	api := router.Group("/api", mw.RequireAuth())
//	admin := api.Group("", mw.RequireRole(entities.UserRoleAdmin))
//
// Handlers read the caller with auth.GetUserID(c); it is passed on to the
// catalog services explicitly.
package auth
