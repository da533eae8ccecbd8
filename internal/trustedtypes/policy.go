// Package trustedtypes models Trusted Types policies as named string transforms.
//
// A Policy is a capability set: it can mint a TrustedValue of a Kind only when
// its PolicyOptions carries the transform for that kind. Sink enforcement is
// left to the embedding runtime.
package trustedtypes

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
)

// Errors returned by policies and factories.
var (
	ErrTransformMissing  = errors.New("policy has no transform for this kind")
	ErrDuplicatePolicy   = errors.New("policy name already in use")
	ErrInvalidPolicyName = errors.New("invalid policy name")
	ErrUnknownKind       = errors.New("unknown trusted type kind")
)

// Kind is a trusted value category.
type Kind int

// Trusted value kinds.
const (
	KindHTML Kind = iota
	KindScript
	KindScriptURL
	KindURL
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindHTML, KindScript, KindScriptURL, KindURL}

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "HTML"
	case KindScript:
		return "Script"
	case KindScriptURL:
		return "ScriptURL"
	case KindURL:
		return "URL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the names produced by Kind.String, case-sensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TrustedValue is a string minted by a policy.
type TrustedValue struct {
	kind   Kind
	value  string
	policy string
}

// Kind returns the value's kind.
func (v TrustedValue) Kind() Kind { return v.kind }

// Policy returns the name of the policy that created the value.
func (v TrustedValue) Policy() string { return v.policy }

func (v TrustedValue) String() string { return v.value }

// Transform maps untrusted input to the string a policy vouches for.
type Transform func(input string) string

// PolicyOptions holds the transform for each kind a policy may create.
type PolicyOptions struct {
	CreateHTML      Transform
	CreateScript    Transform
	CreateScriptURL Transform
	CreateURL       Transform
}

func (o PolicyOptions) transform(k Kind) Transform {
	switch k {
	case KindHTML:
		return o.CreateHTML
	case KindScript:
		return o.CreateScript
	case KindScriptURL:
		return o.CreateScriptURL
	case KindURL:
		return o.CreateURL
	default:
		return nil
	}
}

// Policy creates trusted values with its transforms.
type Policy struct {
	name string
	opts PolicyOptions
}

// Name returns the policy name.
func (p *Policy) Name() string { return p.name }

// Supports reports whether the policy can create values of kind k.
func (p *Policy) Supports(k Kind) bool {
	return p.opts.transform(k) != nil
}

// Create applies the transform for kind to input.
func (p *Policy) Create(kind Kind, input string) (TrustedValue, error) {
	if kind < KindHTML || kind > KindURL {
		return TrustedValue{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	fn := p.opts.transform(kind)
	if fn == nil {
		return TrustedValue{}, fmt.Errorf("policy %q: create%s: %w", p.name, kind, ErrTransformMissing)
	}
	return TrustedValue{kind: kind, value: fn(input), policy: p.name}, nil
}

// CreateHTML creates a trusted HTML value.
func (p *Policy) CreateHTML(input string) (TrustedValue, error) {
	return p.Create(KindHTML, input)
}

// CreateScript creates a trusted script value.
func (p *Policy) CreateScript(input string) (TrustedValue, error) {
	return p.Create(KindScript, input)
}

// CreateScriptURL creates a trusted script URL.
func (p *Policy) CreateScriptURL(input string) (TrustedValue, error) {
	return p.Create(KindScriptURL, input)
}

// CreateURL creates a trusted URL.
func (p *Policy) CreateURL(input string) (TrustedValue, error) {
	return p.Create(KindURL, input)
}

var policyName = regexp.MustCompile(`^[-#a-zA-Z0-9=_/@.%]+$`)

// Factory creates uniquely named policies. It is safe for concurrent use.
type Factory struct {
	mu              sync.Mutex
	policies        map[string]*Policy
	allowDuplicates bool
	logger          *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithAllowDuplicates lets CreatePolicy reuse a name; the newest policy wins.
func WithAllowDuplicates() FactoryOption {
	return func(f *Factory) { f.allowDuplicates = true }
}

// WithLogger sets the logger used for policy events.
func WithLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

// NewFactory creates an empty factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		policies: make(map[string]*Policy),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreatePolicy registers a policy under name.
func (f *Factory) CreatePolicy(name string, opts PolicyOptions) (*Policy, error) {
	if !policyName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicyName, name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.policies[name]; exists && !f.allowDuplicates {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePolicy, name)
	}
	p := &Policy{name: name, opts: opts}
	f.policies[name] = p
	f.logger.Debug("trusted types policy created", "name", name)
	return p, nil
}

// Policy returns a registered policy by name.
func (f *Factory) Policy(name string) (*Policy, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[name]
	return p, ok
}

// PolicyNames returns registered policy names, sorted.
func (f *Factory) PolicyNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.policies))
	for n := range f.policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
