package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	rep "taskBoard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgInvalidIdentity  = "Invalid Google identity token"
	MsgEmailNotVerified = "Email not verified with Google"
	MsgEmailTaken       = "Email is already registered with another Google account"
)

type LoginResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
	// Created is true when this login registered the user.
	Created bool
}

type AuthService struct {
	users    UserRepository
	verifier IdentityVerifier
	issuer   SessionIssuer
	revoker  SessionRevoker
	now      func() time.Time
}

func NewAuthService(users UserRepository, verifier IdentityVerifier, issuer SessionIssuer, revoker SessionRevoker) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		issuer:   issuer,
		revoker:  revoker,
		now:      time.Now,
	}
}

// Login exchanges a Google ID token for a session token, registering the
// user on first sight.
func (s *AuthService) Login(ctx context.Context, rawToken string) (*LoginResult, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, NewBusinessError(CodeIdentityRejected, MsgInvalidIdentity)
	}

	identity, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		logger.Info("Service: google token rejected", zap.Error(err))
		return nil, NewBusinessError(CodeIdentityRejected, MsgInvalidIdentity).Wrap(err)
	}
	if !identity.EmailVerified || identity.Email == "" {
		return nil, NewBusinessError(CodeIdentityRejected, MsgEmailNotVerified)
	}

	u, created, err := s.findOrRegister(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.issuer.Issue(u.ID, u.GoogleID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	logger.Info("Service: user logged in",
		zap.String("user_id", u.ID.String()),
		zap.Bool("registered", created),
	)
	return &LoginResult{
		User:      u,
		Token:     token,
		ExpiresAt: claims.Expiry(),
		Created:   created,
	}, nil
}

func (s *AuthService) findOrRegister(ctx context.Context, identity *auth.Identity) (*user.User, bool, error) {
	u, err := s.users.GetByGoogleID(ctx, identity.Subject)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, rep.ErrNotFound) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	u = user.New(identity.Subject, identity.GivenName, identity.FamilyName, identity.Email, s.now().UTC())
	if err := s.users.Create(ctx, u); err != nil {
		if !errors.Is(err, rep.ErrDuplicate) {
			return nil, false, fmt.Errorf("register user: %w", err)
		}
		// a concurrent first login won the insert, or the email belongs to another subject
		u, err = s.users.GetByGoogleID(ctx, identity.Subject)
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: email already bound to another google account",
				zap.String("google_sub", identity.Subject),
			)
			return nil, false, NewBusinessError(CodeEmailTaken, MsgEmailTaken).Wrap(rep.ErrDuplicate)
		}
		if err != nil {
			return nil, false, fmt.Errorf("find user after duplicate: %w", err)
		}
		return u, false, nil
	}
	return u, true, nil
}

func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("User", id.String())
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

// Logout revokes the session until it would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
