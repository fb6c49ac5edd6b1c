package extratls_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/extratls-go/internal/host"
	"github.com/yndnr/extratls-go/internal/infra/confloader"
	"github.com/yndnr/extratls-go/internal/infra/tlsroots"
	"github.com/yndnr/extratls-go/internal/integration/extratls"
	"github.com/yndnr/extratls-go/internal/telemetry/logger"
	"github.com/yndnr/extratls-go/internal/telemetry/metric"
)

type loadCall struct {
	target   string
	file     string
	key      string
	password []byte
}

// recordingTarget records loads and fails once failOn is seen.
type recordingTarget struct {
	name   string
	failOn string
	calls  *[]loadCall
}

func (r *recordingTarget) Name() string { return r.name }

func (r *recordingTarget) LoadVerifyLocations(caFile string) error {
	if caFile == r.failOn {
		return errors.New("bad bundle")
	}
	*r.calls = append(*r.calls, loadCall{target: r.name, file: caFile})
	return nil
}

func (r *recordingTarget) LoadCertChain(certFile, keyFile string, password []byte) error {
	if certFile == r.failOn {
		return errors.New("bad chain")
	}
	*r.calls = append(*r.calls, loadCall{target: r.name, file: certFile, key: keyFile, password: password})
	return nil
}

func recordingTargets(calls *[]loadCall, failOn string) extratls.Targets {
	mk := func(name string) extratls.Target {
		return &recordingTarget{name: name, failOn: failOn, calls: calls}
	}
	return extratls.Targets{
		CA:   []extratls.Target{mk("a"), mk("b")},
		Cert: []extratls.Target{mk("a"), mk("b"), mk("c"), mk("d")},
	}
}

func strPtr(s string) *string { return &s }

func TestApply_Order(t *testing.T) {
	var calls []loadCall
	cfg := &extratls.Config{
		CA: []string{"ca1.pem", "ca2.pem"},
		Client: []extratls.ClientConfig{
			{Cert: "c1.pem", Key: "c1.key", Password: strPtr("pw")},
			{Cert: "c2.pem"},
		},
	}

	m := metric.NewRegistry()
	require.NoError(t, extratls.Apply(cfg, recordingTargets(&calls, ""), logger.NewDiscard(), m))

	require.Len(t, calls, 2*2+2*4)

	// CA bundles first, each into both CA targets.
	assert.Equal(t, loadCall{target: "a", file: "ca1.pem"}, calls[0])
	assert.Equal(t, loadCall{target: "b", file: "ca1.pem"}, calls[1])
	assert.Equal(t, loadCall{target: "a", file: "ca2.pem"}, calls[2])
	assert.Equal(t, loadCall{target: "b", file: "ca2.pem"}, calls[3])

	for i, c := range calls[4:8] {
		assert.Equal(t, "c1.pem", c.file, "call %d", i)
		assert.Equal(t, "c1.key", c.key)
		assert.Equal(t, []byte("pw"), c.password)
	}
	for _, c := range calls[8:] {
		assert.Equal(t, "c2.pem", c.file)
		assert.Empty(t, c.key)
		assert.Nil(t, c.password)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CALoaded.WithLabelValues("a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClientCertsLoaded.WithLabelValues("d")))
}

func TestApply_EmptyConfig(t *testing.T) {
	var calls []loadCall
	require.NoError(t, extratls.Apply(&extratls.Config{}, recordingTargets(&calls, ""), logger.NewDiscard(), nil))
	assert.Empty(t, calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		wantCalls int
		wantErr   string
	}{
		{name: "CA", failOn: "ca2.pem", wantCalls: 2, wantErr: "load CA ca2.pem into a"},
		{name: "client", failOn: "c1.pem", wantCalls: 4, wantErr: "load client certificate c1.pem into a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []loadCall
			cfg := &extratls.Config{
				CA:     []string{"ca1.pem", "ca2.pem"},
				Client: []extratls.ClientConfig{{Cert: "c1.pem"}, {Cert: "c2.pem"}},
			}

			err := extratls.Apply(cfg, recordingTargets(&calls, tt.failOn), logger.NewDiscard(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Len(t, calls, tt.wantCalls)
		})
	}
}

func TestApply_LogsWithoutPassword(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	var calls []loadCall
	cfg := &extratls.Config{
		CA:     []string{"ca1.pem"},
		Client: []extratls.ClientConfig{{Cert: "c1.pem", Key: "c1.key", Password: strPtr("hunter2")}},
	}
	require.NoError(t, extratls.Apply(cfg, recordingTargets(&calls, ""), log, nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"adding trusted CA"`)
	assert.Contains(t, out, `"path":"ca1.pem"`)
	assert.Contains(t, out, `"msg":"adding client certificate"`)
	assert.Contains(t, out, `"key":"c1.key"`)
	assert.Contains(t, out, `"encrypted":true`)
	assert.NotContains(t, out, "hunter2")
}

func TestDefaultTargets(t *testing.T) {
	r := tlsroots.NewRegistry(tlsroots.WithRootsFunc(tlsroots.NewEmptyPool))
	targets := extratls.DefaultTargets(r)

	names := func(ts []extratls.Target) []string {
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, t.Name())
		}
		return out
	}

	assert.Equal(t, []string{"default", "client_python_default"}, names(targets.CA))
	assert.Equal(t, []string{
		"default",
		"client_python_default",
		"default_no_verify",
		"no_verify_python_default",
	}, names(targets.Cert))

	// Resolving again returns the same cached contexts.
	again := extratls.DefaultTargets(r)
	for i := range targets.Cert {
		assert.Same(t, targets.Cert[i], again.Cert[i])
	}
}

func newHost(t *testing.T, l *confloader.Loader) *host.Host {
	t.Helper()
	return host.New(l,
		host.WithLogger(logger.NewDiscard()),
		host.WithMetrics(metric.NewRegistry()),
		host.WithTLSRegistry(tlsroots.NewRegistry(tlsroots.WithRootsFunc(tlsroots.NewEmptyPool))),
	)
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	ca1, _ := writeCert(t, dir, "ca1.pem", "", nil)
	ca2, _ := writeCert(t, dir, "ca2.pem", "", nil)
	plainCert, plainKey := writeCert(t, dir, "plain.pem", "plain.key", nil)
	encCert, encKey := writeCert(t, dir, "enc.pem", "enc.key", []byte("s3cret"))

	l := loadYAML(t, fmt.Sprintf(`
extra_tls_certificates:
  ca:
    - %s
    - %s
  client:
    - cert: %s
      key: %s
    - cert: %s
      key: %s
      password: s3cret
`, ca1, ca2, plainCert, plainKey, encCert, encKey))

	h := newHost(t, l)
	require.NoError(t, h.Register(extratls.New()))
	require.NoError(t, h.Setup(context.Background()))

	r := h.TLS()
	for _, ctx := range []*tlsroots.Context{r.DefaultContext(), r.ClientContext(tlsroots.CipherPythonDefault)} {
		assert.Len(t, ctx.ExtraCAs(), 2, ctx.Name())
		assert.Len(t, ctx.Certificates(), 2, ctx.Name())
	}
	for _, ctx := range []*tlsroots.Context{r.DefaultNoVerifyContext(), r.NoVerifyContext(tlsroots.CipherPythonDefault)} {
		assert.Empty(t, ctx.ExtraCAs(), ctx.Name())
		assert.Len(t, ctx.Certificates(), 2, ctx.Name())
	}

	// Contexts outside the defaults stay untouched.
	modern := r.ClientContext(tlsroots.CipherModern)
	assert.Empty(t, modern.ExtraCAs())
	assert.Empty(t, modern.Certificates())

	m := h.Metrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CALoaded.WithLabelValues("default")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClientCertsLoaded.WithLabelValues("no_verify_python_default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrationSetups.WithLabelValues(extratls.Domain, metric.ResultOK)))
}

func TestSetup_NoSection(t *testing.T) {
	h := newHost(t, loadYAML(t, "log:\n  level: debug\n"))
	require.NoError(t, h.Register(extratls.New()))
	require.NoError(t, h.Setup(context.Background()))

	for _, ctx := range h.TLS().Contexts() {
		assert.Empty(t, ctx.ExtraCAs(), ctx.Name())
		assert.Empty(t, ctx.Certificates(), ctx.Name())
	}
}

func TestSetup_InvalidConfigLoadsNothing(t *testing.T) {
	dir := t.TempDir()
	ca1, _ := writeCert(t, dir, "ca1.pem", "", nil)
	missing := filepath.Join(dir, "missing.pem")

	l := loadYAML(t, fmt.Sprintf(`
extra_tls_certificates:
  ca:
    - %s
    - %s
`, ca1, missing))

	h := newHost(t, l)
	require.NoError(t, h.Register(extratls.New()))

	err := h.Setup(context.Background())
	require.ErrorIs(t, err, host.ErrInvalidConfig)
	assert.Contains(t, err.Error(), missing)

	assert.Empty(t, h.TLS().DefaultContext().ExtraCAs())
	assert.Equal(t, 1.0, testutil.ToFloat64(
		h.Metrics().IntegrationSetups.WithLabelValues(extratls.Domain, metric.ResultInvalidConfig)))
}

func TestSetup_WrongPassword(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeCert(t, dir, "enc.pem", "enc.key", []byte("right"))

	l := loadYAML(t, fmt.Sprintf(`
extra_tls_certificates:
  client:
    - cert: %s
      key: %s
      password: wrong
`, certFile, keyFile))

	h := newHost(t, l)
	require.NoError(t, h.Register(extratls.New()))

	err := h.Setup(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, host.ErrInvalidConfig)
	assert.Empty(t, h.TLS().DefaultContext().Certificates())
	assert.Equal(t, 1.0, testutil.ToFloat64(
		h.Metrics().IntegrationSetups.WithLabelValues(extratls.Domain, metric.ResultFailed)))
}
