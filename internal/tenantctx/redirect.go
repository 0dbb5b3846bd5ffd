package tenantctx

import (
	"log/slog"

	"cockpit/internal/platform/metrics"
	"cockpit/internal/routing"
	dErrors "cockpit/pkg/domain-errors"
)

// SwitchTarget describes where an explicit tenant or project switch goes.
type SwitchTarget struct {
	Kind        routing.ContextKind
	TenantSlug  string
	ProjectSlug string
	// SupportsPage overrides the descriptor's page set with the target's
	// own feature set, when known. Nil means the descriptor governs.
	SupportsPage func(pageType string) bool
}

// Planner decides whether the current page survives a context switch.
type Planner struct {
	routes  *routing.Descriptor
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

func WithPlannerLogger(l *slog.Logger) PlannerOption {
	return func(p *Planner) { p.logger = l }
}

func WithPlannerMetrics(m *metrics.Metrics) PlannerOption {
	return func(p *Planner) { p.metrics = m }
}

// NewPlanner creates a redirect planner over the route table.
func NewPlanner(routes *routing.Descriptor, opts ...PlannerOption) *Planner {
	p := &Planner{routes: routes, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the URL for an explicit context switch. When the switch
// stays within the same context kind, that kind is page-preserving, and the
// target supports the current page, the page survives; otherwise the target
// home path is used so the user never lands on a page the target does not
// have.
func (p *Planner) Plan(currentPath string, target SwitchTarget) (string, error) {
	if target.Kind != routing.KindTenant && target.Kind != routing.KindProject {
		return "", dErrors.New(dErrors.CodeInvalidInput, "switch target must be a tenant or project context")
	}

	current := p.routes.ParseRoute(currentPath)

	preserve := current.Context == target.Kind &&
		p.routes.PagePreserving(target.Kind) &&
		current.Known &&
		current.PageType != "" &&
		p.targetSupports(target, current.PageType)

	if preserve {
		url, err := p.routes.BuildURL(target.Kind, target.TenantSlug, target.ProjectSlug, current.PageType)
		if err != nil {
			return "", err
		}
		p.count("preserved")
		return url, nil
	}

	url, err := p.routes.HomeURL(target.Kind, target.TenantSlug, target.ProjectSlug)
	if err != nil {
		return "", err
	}
	p.count("home")
	return url, nil
}

func (p *Planner) targetSupports(target SwitchTarget, pageType string) bool {
	if target.SupportsPage != nil {
		return target.SupportsPage(pageType)
	}
	return p.routes.ValidPage(target.Kind, pageType)
}

func (p *Planner) count(kind string) {
	if p.metrics != nil {
		p.metrics.RedirectsPlanned.WithLabelValues(kind).Inc()
	}
}
