package middleware

import (
	"context"
	"strings"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Guard holds the authentication and authorization middlewares.
type Guard struct {
	tokens   *auth.TokenManager
	users    auth.UserStore
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewGuard(tokens *auth.TokenManager, users auth.UserStore, logger *zap.Logger) (*Guard, error) {
	enforcer, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return &Guard{tokens: tokens, users: users, enforcer: enforcer, logger: logger.Named("guard")}, nil
}

// RequireAuth validates the bearer token and stores its claims under
// auth.ContextKey. The account is re-read on every request, so deactivation
// and role changes apply before the token expires.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return apperr.Unauthorized("Missing authorization token")
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			return apperr.Unauthorized("Malformed authorization header")
		}

		claims, err := g.tokens.ValidateJWT(token)
		if err != nil {
			g.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return apperr.Unauthorized("Invalid or expired token")
		}
		if err := g.refresh(c.Request().Context(), claims); err != nil {
			return err
		}
		c.Set(auth.ContextKey, claims)
		return next(c)
	}
}

// refresh rejects tokens of deleted or deactivated accounts and replaces the
// signed role with the stored one.
func (g *Guard) refresh(ctx context.Context, claims *auth.JWTClaims) error {
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return apperr.Unauthorized("Invalid or expired token")
	}
	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		g.logger.Error("failed to load token owner", zap.String("user_id", claims.UserID), zap.Error(err))
		return apperr.Internal("Failed to fetch user: "+err.Error(), err)
	}
	if user == nil {
		return apperr.Unauthorized("Account no longer exists")
	}
	if !user.IsActive {
		return apperr.Forbidden("Account is deactivated")
	}
	claims.Role = user.Role
	return nil
}

// RequireAdmin must run after RequireAuth.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			return apperr.Unauthorized("Authentication required")
		}
		if claims.Role != auth.RoleAdmin {
			return apperr.Forbidden("Admin access required")
		}
		return next(c)
	}
}

// RequirePermission asks the enforcer whether the caller's role may perform
// action on resource.
func (g *Guard) RequirePermission(resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFrom(c)
			if !ok {
				return apperr.Unauthorized("Authentication required")
			}
			allowed, err := g.enforcer.Enforce(string(claims.Role), resource, action)
			if err != nil {
				g.logger.Error("permission check failed", zap.Error(err))
				return apperr.Internal("Permission check failed", err)
			}
			if !allowed {
				g.logger.Info("permission denied",
					zap.String("role", string(claims.Role)),
					zap.String("resource", resource),
					zap.String("action", action))
				return apperr.Forbidden("Insufficient permissions").
					WithDetails("resource", resource).
					WithDetails("action", action)
			}
			return next(c)
		}
	}
}
