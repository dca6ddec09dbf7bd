package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/config"
	"github.com/pondpilot/pondpilot-sub007/pkg/engine"
	"github.com/pondpilot/pondpilot-sub007/pkg/failure"
	"github.com/pondpilot/pondpilot-sub007/pkg/notify"
	"github.com/pondpilot/pondpilot-sub007/pkg/remote"
	"github.com/pondpilot/pondpilot-sub007/pkg/retry"
	"github.com/pondpilot/pondpilot-sub007/pkg/statement"
)

// notifyDuration is how long proxy-engaged notifications stay on screen.
const notifyDuration = 8 * time.Second

// Outcome is the terminal value of one statement execution.
type Outcome struct {
	Success   bool
	Result    *engine.Result
	Err       error
	ErrKind   failure.Kind
	Attempts  int
	UsedProxy bool
	Cancelled bool
}

// Gateway executes statements against the engine with cross-origin
// fallback for remote attaches.
type Gateway struct {
	engine     engine.Engine
	settings   SettingsProvider
	registry   Registry
	notifier   notify.Notifier
	classifier *statement.Classifier
	errors     failure.Classifier
	exec       *retry.Executor
	policy     retry.Policy
	log        zerolog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRegistry wires an attachment registry.
func WithRegistry(r Registry) Option {
	return func(g *Gateway) { g.registry = r }
}

// WithNotifier wires a notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Gateway) { g.notifier = n }
}

// WithPolicy overrides the default retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(g *Gateway) { g.policy = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithErrorClassifier replaces the failure classifier, e.g. to extend the
// cross-origin signature list.
func WithErrorClassifier(c failure.Classifier) Option {
	return func(g *Gateway) { g.errors = c }
}

// New creates a gateway over the given engine and settings provider.
func New(eng engine.Engine, settings SettingsProvider, opts ...Option) *Gateway {
	g := &Gateway{
		engine:     eng,
		settings:   settings,
		classifier: statement.NewClassifier(),
		errors:     failure.NewSignatureClassifier(),
		policy:     retry.DefaultPolicy(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.exec = retry.NewExecutor(g.errors, g.log)
	return g
}

// Execute runs a single SQL statement through the resilience state
// machine: classify, attempt directly, and, for attach statements under
// the auto behavior, retry exactly once through the proxy when the
// failure is classified as a cross-origin restriction.
func (g *Gateway) Execute(ctx context.Context, sqlText string) Outcome {
	cfg := g.settings.GetProxyConfig()
	cls := g.classifier.Classify(sqlText)

	// Non-attach statements execute directly: one attempt, no rewriting
	// eligibility even when they contain URL-like text.
	if cls.Kind != statement.KindAttach {
		out := g.run(ctx, g.policy.Single(), sqlText)
		if out.Success && cls.Kind == statement.KindDetach && cls.DetachAlias != "" && g.registry != nil {
			if err := g.registry.Remove(ctx, cls.DetachAlias); err != nil {
				g.log.Debug().Err(err).Str("alias", cls.DetachAlias).Msg("registry remove failed")
			}
		}
		return out
	}

	att := cls.Attach
	proto := remote.Classify(att.TargetURL)
	g.log.Debug().
		Str("alias", att.Alias).
		Str("url", remote.Redact(att.TargetURL)).
		Str("protocol", string(proto)).
		Bool("explicit_proxy", att.ExplicitProxy).
		Msg("attach statement")

	// An explicit force-proxy marker wraps unconditionally, whatever the
	// configured behavior, and consumes exactly one attempt. The marker is
	// stripped even when the rewriter declines (managed protocol, local
	// path, conversion failure).
	if att.ExplicitProxy {
		rw := remote.Rewrite(att.TargetURL, cfg, true)
		if rw.WasRewritten {
			g.notifyProxyEngaged(att, proto)
		}
		out := g.run(ctx, g.policy.Single(), att.WithURL(rw.URL))
		out.UsedProxy = rw.WasRewritten
		if out.Success {
			g.record(ctx, att, rw.WasRewritten)
		}
		return out
	}

	// Under always, route through the proxy up front; a declined rewrite
	// (e.g. unresolvable cloud URL) falls back to the native attempt.
	if cfg.Behavior == config.BehaviorAlways && proto.Proxyable() {
		if rw := remote.Rewrite(att.TargetURL, cfg, true); rw.WasRewritten {
			g.notifyProxyEngaged(att, proto)
			out := g.run(ctx, g.policy, att.WithURL(rw.URL))
			out.UsedProxy = true
			if out.Success {
				g.record(ctx, att, true)
			}
			return out
		}
	}

	// Direct attempt with the original statement, unmodified.
	direct := g.run(ctx, g.policy, sqlText)
	if direct.Success {
		g.record(ctx, att, false)
		return direct
	}
	if direct.Cancelled {
		return direct
	}

	// Automatic proxy fallback applies only in auto mode, only to
	// cross-origin-classified failures, and only for protocols the proxy
	// can help.
	if cfg.Behavior != config.BehaviorAuto || direct.ErrKind != failure.KindCrossOrigin || !proto.Proxyable() {
		return direct
	}

	rw := remote.Rewrite(att.TargetURL, cfg, true)
	if !rw.WasRewritten {
		return direct
	}

	g.log.Info().
		Str("alias", att.Alias).
		Str("url", remote.Redact(att.TargetURL)).
		Msg("cross-origin failure, retrying through proxy")
	g.notifyProxyEngaged(att, proto)

	retried := g.run(ctx, g.policy.Single(), att.WithURL(rw.URL))
	retried.Attempts += direct.Attempts
	retried.UsedProxy = true

	if retried.Success {
		g.record(ctx, att, true)
		return retried
	}
	if retried.Cancelled {
		return retried
	}

	// Idempotence guard: a duplicate-attach signal means a prior attempt
	// partially succeeded before reporting failure. The attach converged;
	// treat it as success rather than compounding the error.
	if retried.ErrKind == failure.KindDuplicateAttach || g.converged(ctx, att.Alias) {
		g.record(ctx, att, true)
		return Outcome{
			Success:   true,
			Result:    &engine.Result{},
			Attempts:  retried.Attempts,
			UsedProxy: true,
		}
	}

	// Terminal: name both paths so the user is not left guessing which
	// one failed. The original error text is preserved verbatim.
	return Outcome{
		Err: fmt.Errorf("remote attach failed both directly and through the proxy: direct attempt: %v; proxy attempt: %v",
			direct.Err, retried.Err),
		ErrKind:   direct.ErrKind,
		Attempts:  retried.Attempts,
		UsedProxy: true,
	}
}

// ExecuteScript splits a script into statements and executes them in
// order, stopping after the first failure. The failed statement's outcome
// is included.
func (g *Gateway) ExecuteScript(ctx context.Context, script string) []Outcome {
	var outs []Outcome
	for _, stmt := range statement.Split(script) {
		out := g.Execute(ctx, stmt)
		outs = append(outs, out)
		if !out.Success {
			break
		}
	}
	return outs
}

// run executes sqlText through the retry executor under the given policy.
func (g *Gateway) run(ctx context.Context, policy retry.Policy, sqlText string) Outcome {
	rout := g.exec.Run(ctx, policy, func(ctx context.Context) (*engine.Result, error) {
		return g.engine.Execute(ctx, sqlText)
	})

	out := Outcome{
		Result:    rout.Result,
		Attempts:  rout.Attempts,
		Cancelled: rout.Cancelled,
	}
	if rout.Success() {
		out.Success = true
	} else {
		out.Err = rout.Err.Err
		out.ErrKind = rout.Err.Kind
	}
	return out
}

// record writes the attach to the registry, best effort.
func (g *Gateway) record(ctx context.Context, att *statement.Attach, proxied bool) {
	if g.registry == nil || att.Alias == "" {
		return
	}
	if err := g.registry.Record(ctx, att.Alias, att.TargetURL, proxied); err != nil {
		g.log.Debug().Err(err).Str("alias", att.Alias).Msg("registry record failed")
	}
}

// converged reports whether the alias is already attached per the
// registry, the structured backstop for the duplicate-attach guard.
func (g *Gateway) converged(ctx context.Context, alias string) bool {
	if g.registry == nil || alias == "" {
		return false
	}
	ok, err := g.registry.Exists(ctx, alias)
	return err == nil && ok
}

// notifyProxyEngaged emits the informational notification for an engaged
// proxy, with wording that sets performance expectations per source type.
func (g *Gateway) notifyProxyEngaged(att *statement.Attach, proto remote.Protocol) {
	if g.notifier == nil {
		return
	}
	name := att.Alias
	if name == "" {
		name = remote.Redact(att.TargetURL)
	}

	var msg string
	if proto.ObjectStorage() {
		msg = fmt.Sprintf("Attaching %s through the CORS proxy. Cloud storage requests are re-routed over HTTPS, so the first queries may be noticeably slower.", name)
	} else {
		msg = fmt.Sprintf("Attaching %s through the CORS proxy because the server does not allow cross-origin requests. Expect slightly higher latency.", name)
	}
	g.notifier.Notify("CORS proxy enabled", msg, notifyDuration)
}
