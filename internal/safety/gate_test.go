package safety

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/auth"
)

const prodRef = "sxlogxqzmarhqsblxmtj"

type fakeProber struct{ err error }

func (f fakeProber) Probe(context.Context) error { return f.err }

func newTestGate(prober Prober, confirmer Confirmer) *Gate {
	return NewGate(
		[]string{"https://" + prodRef + ".supabase.co", prodRef + ".supabase.co"},
		[]string{"sandbox", "development", "test"},
		prober, confirmer, zerolog.Nop(),
	)
}

func sandboxTarget() Target {
	return Target{
		URL:         "postgres://postgres:pw@db.abcsandbox.supabase.co:5432/postgres",
		ServiceKey:  "db-password",
		Environment: "sandbox",
	}
}

func TestGateRejectsBlacklistedTargets(t *testing.T) {
	gate := newTestGate(fakeProber{}, nil)
	urls := []string{
		"https://" + prodRef + ".supabase.co",
		"http://" + prodRef + ".supabase.co/rest/v1/profiles",
		prodRef + ".supabase.co",
		"postgres://postgres:pw@db." + prodRef + ".supabase.co:5432/postgres",
		"HTTPS://" + strings.ToUpper(prodRef) + ".SUPABASE.CO/",
		"https://" + prodRef + "%2Esupabase%2Eco",
	}
	for _, u := range urls {
		target := sandboxTarget()
		target.URL = u
		err := gate.Check(context.Background(), target)
		assert.ErrorIs(t, err, apperrors.ErrSafetyViolation, u)
		assert.ErrorIs(t, err, apperrors.ErrBlacklistedTarget, u)
	}
}

func TestGateEnvironmentFlag(t *testing.T) {
	gate := newTestGate(fakeProber{}, nil)

	for _, env := range []string{"sandbox", "development", "test", "SANDBOX", " Test "} {
		target := sandboxTarget()
		target.Environment = env
		assert.NoError(t, gate.Check(context.Background(), target), env)
	}

	for _, env := range []string{"production", "", "prod", "staging"} {
		target := sandboxTarget()
		target.Environment = env
		err := gate.Check(context.Background(), target)
		assert.ErrorIs(t, err, apperrors.ErrInvalidEnvironment, env)
	}
}

func TestGateConnectivity(t *testing.T) {
	gate := newTestGate(fakeProber{err: errors.New("connection refused")}, nil)
	err := gate.Check(context.Background(), sandboxTarget())
	assert.ErrorIs(t, err, apperrors.ErrConnectivity)
	assert.ErrorIs(t, err, apperrors.ErrSafetyViolation)
}

func TestGateServiceKeyClaims(t *testing.T) {
	sign := func(ref string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.ServiceKeyClaims{Role: auth.ServiceRole, Ref: ref}).
			SignedString([]byte("secret"))
		require.NoError(t, err)
		return tok
	}
	gate := newTestGate(fakeProber{}, nil)

	target := sandboxTarget()
	target.ServiceKey = sign(prodRef)
	assert.ErrorIs(t, gate.Check(context.Background(), target), apperrors.ErrBlacklistedTarget)

	target.ServiceKey = sign("abcsandbox")
	assert.NoError(t, gate.Check(context.Background(), target))

	target.ServiceKey = ""
	assert.ErrorIs(t, gate.Check(context.Background(), target), apperrors.ErrInvalidServiceKey)
}

func TestConfirmDestructive(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected answer aborts", func(t *testing.T) {
		c := &StaticConfirmer{Answer: false}
		err := newTestGate(fakeProber{}, c).ConfirmDestructive(ctx, sandboxTarget(), ConfirmOptions{})
		assert.ErrorIs(t, err, apperrors.ErrConfirmationRejected)
		assert.Equal(t, 1, c.Asked)
	})

	t.Run("accepted answer proceeds", func(t *testing.T) {
		c := &StaticConfirmer{Answer: true}
		assert.NoError(t, newTestGate(fakeProber{}, c).ConfirmDestructive(ctx, sandboxTarget(), ConfirmOptions{}))
	})

	t.Run("explicit bypasses never ask", func(t *testing.T) {
		c := &StaticConfirmer{Answer: false}
		gate := newTestGate(fakeProber{}, c)
		assert.NoError(t, gate.ConfirmDestructive(ctx, sandboxTarget(), ConfirmOptions{SkipConfirmation: true}))
		assert.NoError(t, gate.ConfirmDestructive(ctx, sandboxTarget(), ConfirmOptions{CI: true}))
		assert.Zero(t, c.Asked)
	})

	t.Run("no confirmer and no bypass fails", func(t *testing.T) {
		err := newTestGate(fakeProber{}, nil).ConfirmDestructive(ctx, sandboxTarget(), ConfirmOptions{})
		assert.ErrorIs(t, err, apperrors.ErrConfirmationRejected)
	})
}

func TestTerminalConfirmer(t *testing.T) {
	host := sandboxTarget().Hostname()
	assert.Equal(t, "db.abcsandbox.supabase.co", host)

	var out bytes.Buffer
	ok, err := TerminalConfirmer{In: strings.NewReader(host + "\n"), Out: &out}.Confirm(context.Background(), host)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), host)

	ok, err = TerminalConfirmer{In: strings.NewReader("db.abcsandbox\n"), Out: &out}.Confirm(context.Background(), host)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = TerminalConfirmer{In: strings.NewReader("  " + host + "  \n"), Out: &out}.Confirm(context.Background(), host)
	require.NoError(t, err)
	assert.True(t, ok, "surrounding whitespace is trimmed")
}

func TestHostname(t *testing.T) {
	cases := map[string]string{
		"https://abc.supabase.co/rest/v1": "abc.supabase.co",
		"abc.supabase.co":                 "abc.supabase.co",
		"postgres://u:p@Host.Example:5432": "host.example",
	}
	for in, want := range cases {
		assert.Equal(t, want, Target{URL: in}.Hostname(), in)
	}
}
