// Package safety decides whether a run may touch its target store at all, and
// whether a destructive cleanup may proceed.
package safety

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/auth"
)

// Prober is the slice of the store the gate needs
type Prober interface {
	Probe(ctx context.Context) error
}

// Target describes the store a run is about to write to
type Target struct {
	URL         string
	ServiceKey  string
	Environment string
}

// Hostname returns the host part of the target URL, or the bare input with
// any scheme removed when it does not parse as a URL.
func (t Target) Hostname() string {
	raw := strings.TrimSpace(t.URL)
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	if u, err := url.Parse("//" + stripScheme(raw)); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(stripScheme(raw))
}

// Gate runs the pre-flight checks
type Gate struct {
	blacklist    []string
	allowed      []string
	prober       Prober
	confirmer    Confirmer
	probeTimeout time.Duration
	logger       zerolog.Logger
}

// NewGate creates a Gate. blacklist entries may carry a scheme; they are
// matched as case-insensitive substrings.
func NewGate(blacklist, allowedEnvironments []string, prober Prober, confirmer Confirmer, lgr zerolog.Logger) *Gate {
	return &Gate{
		blacklist:    blacklist,
		allowed:      allowedEnvironments,
		prober:       prober,
		confirmer:    confirmer,
		probeTimeout: 10 * time.Second,
		logger:       lgr,
	}
}

// Check runs the blacklist, environment, credential and connectivity checks in
// that order and stops at the first failure.
func (g *Gate) Check(ctx context.Context, target Target) error {
	if err := g.checkBlacklist(target); err != nil {
		return err
	}
	if err := g.checkEnvironment(target.Environment); err != nil {
		return err
	}
	if err := g.checkServiceKey(target); err != nil {
		return err
	}
	if err := g.checkConnectivity(ctx); err != nil {
		return err
	}

	g.logger.Info().
		Str("host", target.Hostname()).
		Str("environment", strings.ToLower(target.Environment)).
		Msg("Safety checks passed")
	return nil
}

func (g *Gate) checkBlacklist(target Target) error {
	normalized := normalizeTarget(target.URL)
	for _, entry := range g.blacklist {
		needle := normalizeTarget(entry)
		if needle == "" {
			continue
		}
		if strings.Contains(normalized, needle) {
			g.logger.Error().Str("host", target.Hostname()).Msg("Target matches the production blacklist")
			return apperrors.NewSafetyError(apperrors.ErrBlacklistedTarget,
				fmt.Sprintf("target %q matches production identifier %q; expected a sandbox store", target.Hostname(), needle))
		}
	}
	return nil
}

func (g *Gate) checkEnvironment(env string) error {
	value := strings.ToLower(strings.TrimSpace(env))
	for _, allowed := range g.allowed {
		if value == strings.ToLower(strings.TrimSpace(allowed)) {
			return nil
		}
	}
	g.logger.Error().Str("environment", env).Strs("allowed", g.allowed).Msg("Environment flag rejected")
	return apperrors.NewSafetyError(apperrors.ErrInvalidEnvironment,
		fmt.Sprintf("environment %q is not one of %s", env, strings.Join(g.allowed, ", ")))
}

// checkServiceKey inspects the key's claims when it is a JWT. A key issued for a
// blacklisted project is rejected even if the URL looks harmless.
func (g *Gate) checkServiceKey(target Target) error {
	if target.ServiceKey == "" {
		return apperrors.NewSafetyError(apperrors.ErrInvalidServiceKey, "store credential is required")
	}

	claims, err := auth.ParseServiceKey(target.ServiceKey)
	if err != nil {
		// Opaque credentials (database passwords) carry nothing to inspect
		g.logger.Debug().Err(err).Msg("Service key is not a JWT, skipping claim checks")
		return nil
	}

	ref := strings.ToLower(claims.Ref)
	for _, entry := range g.blacklist {
		needle := normalizeTarget(entry)
		if ref != "" && needle != "" && (strings.Contains(needle, ref) || strings.Contains(ref, needle)) {
			return apperrors.NewSafetyError(apperrors.ErrBlacklistedTarget,
				fmt.Sprintf("service key belongs to production project %q", claims.Ref))
		}
	}

	if claims.Role != "" && claims.Role != auth.ServiceRole {
		g.logger.Warn().Str("role", claims.Role).Msg("Service key is not a service_role key, inserts may be rejected by row level security")
	}
	return nil
}

func (g *Gate) checkConnectivity(ctx context.Context) error {
	if g.prober == nil {
		return apperrors.NewSafetyError(apperrors.ErrConnectivity, "no store to probe")
	}

	ctx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	if err := g.prober.Probe(ctx); err != nil {
		g.logger.Error().Err(err).Msg("Store connectivity check failed")
		return apperrors.NewSafetyError(apperrors.ErrConnectivity,
			fmt.Sprintf("could not read from the target store: %v", err))
	}
	return nil
}

// ConfirmOptions are the explicit ways to bypass the interactive prompt
type ConfirmOptions struct {
	SkipConfirmation bool
	CI               bool
}

// ConfirmDestructive asks the operator to type the target hostname back before
// a cleanup. Bypasses are logged, never silent.
func (g *Gate) ConfirmDestructive(ctx context.Context, target Target, opts ConfirmOptions) error {
	host := target.Hostname()

	switch {
	case opts.SkipConfirmation:
		g.logger.Warn().Str("host", host).Msg("Destructive confirmation skipped by --skip-confirmation")
		return nil
	case opts.CI:
		g.logger.Warn().Str("host", host).Msg("Destructive confirmation skipped because CI is set")
		return nil
	}

	if g.confirmer == nil {
		return apperrors.NewSafetyError(apperrors.ErrConfirmationRejected,
			"no interactive confirmer available; pass --skip-confirmation to run unattended")
	}

	ok, err := g.confirmer.Confirm(ctx, host)
	if err != nil {
		return apperrors.NewSafetyError(apperrors.ErrConfirmationRejected,
			fmt.Sprintf("confirmation failed: %v", err))
	}
	if !ok {
		g.logger.Error().Str("host", host).Msg("Typed hostname did not match")
		return apperrors.NewSafetyError(apperrors.ErrConfirmationRejected,
			fmt.Sprintf("typed hostname did not match %q", host))
	}

	g.logger.Info().Str("host", host).Msg("Destructive operation confirmed")
	return nil
}

// normalizeTarget lowercases, url-decodes, drops the scheme and whitespace so
// encoded or reformatted spellings of a host still match.
func normalizeTarget(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < 3; i++ {
		decoded, err := url.PathUnescape(s)
		if err != nil || decoded == s {
			break
		}
		s = decoded
	}
	s = strings.ToLower(s)
	s = stripScheme(s)
	return strings.Join(strings.Fields(s), "")
}

func stripScheme(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return s[i+3:]
	}
	return s
}
