package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure implementations satisfy the interfaces.
var (
	_ driving.Tool         = (*LookupTool)(nil)
	_ driving.ToolRegistry = (*ToolRegistry)(nil)
)

// LookupConfig describes a lookup tool.
type LookupConfig struct {
	Spec domain.ToolSpec

	// Subject names the identifier in log lines ("order", "policy").
	Subject string

	// Template is the query sent to retrieval; %s receives the argument.
	Template string

	// ResultPrefix, when set, is prepended to successful results.
	// %s receives the argument.
	ResultPrefix string

	// TopK is passed to Query. Zero uses the service default.
	TopK int
}

// LookupTool wraps a retrieval query in a natural-language template.
// It does no retries and no caching.
type LookupTool struct {
	cfg       LookupConfig
	retrieval driving.RetrievalService
}

// NewLookupTool creates a lookup tool over retrieval.
func NewLookupTool(retrieval driving.RetrievalService, cfg LookupConfig) (*LookupTool, error) {
	if cfg.Spec.Name == "" {
		return nil, fmt.Errorf("%w: tool name is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateQueryTemplate(cfg.Template); err != nil {
		return nil, fmt.Errorf("tool %s: %w", cfg.Spec.Name, err)
	}
	if cfg.ResultPrefix != "" {
		if err := domain.ValidateQueryTemplate(cfg.ResultPrefix); err != nil {
			return nil, fmt.Errorf("tool %s result prefix: %w", cfg.Spec.Name, err)
		}
	}
	if cfg.Subject == "" {
		cfg.Subject = cfg.Spec.Param
	}
	return &LookupTool{cfg: cfg, retrieval: retrieval}, nil
}

// Spec returns the tool description.
func (t *LookupTool) Spec() domain.ToolSpec {
	return t.cfg.Spec
}

// Query returns the retrieval query for arg.
func (t *LookupTool) Query(arg string) string {
	return fmt.Sprintf(t.cfg.Template, strings.TrimSpace(arg))
}

// Invoke runs the lookup and renders the result for speech.
func (t *LookupTool) Invoke(ctx context.Context, arg string) string {
	arg = strings.TrimSpace(arg)
	logger.Info("RAG lookup for %s: %s", t.cfg.Subject, arg)

	outcome := t.retrieval.Query(ctx, t.Query(arg), t.cfg.TopK)
	text := RenderOutcome(outcome)
	if outcome.OK() && t.cfg.ResultPrefix != "" {
		return fmt.Sprintf(t.cfg.ResultPrefix, arg) + text
	}
	return text
}

// ToolRegistry holds tools by name. It is safe for concurrent use.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]driving.Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]driving.Tool)}
}

// Register adds a tool.
func (r *ToolRegistry) Register(tool driving.Tool) error {
	name := tool.Spec().Name
	if name == "" {
		return fmt.Errorf("%w: tool name is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns the named tool.
func (r *ToolRegistry) Get(name string) (driving.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tool specs sorted by name.
func (r *ToolRegistry) List() []domain.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]domain.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, t.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Dispatch invokes the named tool with arg.
func (r *ToolRegistry) Dispatch(ctx context.Context, name, arg string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}
	return t.Invoke(ctx, arg), nil
}

// BuiltinLookups returns the configurations of the order, policy and
// product lookups with their default templates.
func BuiltinLookups() []LookupConfig {
	return []LookupConfig{
		{
			Spec: domain.ToolSpec{
				Name:             domain.ToolOrderStatus,
				Description:      "Look up the current status and delivery information for a specific order ID.",
				Param:            "order_id",
				ParamDescription: "The order identifier, for example ORD123.",
			},
			Subject:      "order",
			Template:     domain.DefaultQueryTemplates[domain.ToolOrderStatus],
			ResultPrefix: domain.OrderResultPrefix,
		},
		{
			Spec: domain.ToolSpec{
				Name:             domain.ToolPolicyInfo,
				Description:      "Get store policies regarding shipping tiers, return windows, refunds, or warranty coverage.",
				Param:            "topic",
				ParamDescription: "The policy topic, for example returns or shipping.",
			},
			Subject:  "policy",
			Template: domain.DefaultQueryTemplates[domain.ToolPolicyInfo],
		},
		{
			Spec: domain.ToolSpec{
				Name:             domain.ToolProductInfo,
				Description:      "Check product availability, price, SKU, and technical specifications from the catalog.",
				Param:            "product_name",
				ParamDescription: "The product name as the customer said it.",
			},
			Subject:  "product",
			Template: domain.DefaultQueryTemplates[domain.ToolProductInfo],
		},
	}
}

// NewDefaultToolRegistry registers the built-in lookups over retrieval.
// Templates are resolved through templates when it is non-nil.
func NewDefaultToolRegistry(
	retrieval driving.RetrievalService,
	templates driven.TemplateStore,
	topK int,
) (*ToolRegistry, error) {
	reg := NewToolRegistry()
	for _, cfg := range BuiltinLookups() {
		if templates != nil {
			tmpl, err := templates.Load(cfg.Spec.Name)
			if err != nil {
				return nil, fmt.Errorf("load template for %s: %w", cfg.Spec.Name, err)
			}
			cfg.Template = tmpl
		}
		cfg.TopK = topK

		tool, err := NewLookupTool(retrieval, cfg)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(tool); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
