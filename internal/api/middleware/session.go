package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apiContext "devtogether/internal/api/context"
	"devtogether/internal/engine/access"
	"devtogether/internal/platform/auth"
	"devtogether/internal/platform/models"
)

// ProfileLoader is the slice of the profile repository the session needs.
type ProfileLoader interface {
	GetByID(id string) (*models.Profile, error)
}

// SessionMiddleware turns the bearer token, if any, into SessionFacts.
// It never rejects a request; the access middleware decides what the facts permit.
type SessionMiddleware struct {
	tokenSvc *auth.TokenService
	profiles ProfileLoader
}

func NewSessionMiddleware(tokenSvc *auth.TokenService, profiles ProfileLoader) *SessionMiddleware {
	return &SessionMiddleware{tokenSvc: tokenSvc, profiles: profiles}
}

func (m *SessionMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := m.claims(r)
		if claims == nil {
			next(w, r.WithContext(context.WithValue(ctx, apiContext.Facts, access.SessionFacts{})))
			return
		}

		ctx = context.WithValue(ctx, apiContext.Claims, claims)
		ctx = context.WithValue(ctx, apiContext.Facts, m.facts(claims.UserID))
		next(w, r.WithContext(ctx))
	}
}

func (m *SessionMiddleware) claims(r *http.Request) *auth.Claims {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		log.Debug().Msg("ignoring malformed authorization header")
		return nil
	}

	claims, err := m.tokenSvc.ValidateAccessToken(parts[1])
	if err != nil {
		log.Debug().Err(err).Msg("ignoring invalid access token")
		return nil
	}
	return claims
}

// facts loads the profile behind a verified identity. A store failure leaves
// the session loading instead of guessing at role or block state.
func (m *SessionMiddleware) facts(userID string) access.SessionFacts {
	profile, err := m.profiles.GetByID(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load profile for session")
		return access.SessionFacts{Authenticated: true, Loading: true, UserID: userID}
	}
	if profile == nil {
		return access.SessionFacts{Authenticated: true, UserID: userID}
	}
	return profile.SessionFacts()
}

// FactsFrom returns the facts stored by SessionMiddleware, or anonymous facts.
func FactsFrom(ctx context.Context) access.SessionFacts {
	facts, _ := ctx.Value(apiContext.Facts).(access.SessionFacts)
	return facts
}

func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(apiContext.Claims).(*auth.Claims)
	return claims
}
