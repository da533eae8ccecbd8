package trustedtypes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sample inputs, one per kind.
var Inputs = map[Kind]string{
	KindHTML:      "Hi, I want to be transformed!",
	KindScript:    "Hi, I want to be transformed!",
	KindScriptURL: "http://this.is.a.scripturl.test/",
	KindURL:       "http://hello.i.am.an.url/",
}

// Results are the sample transforms applied to Inputs.
var Results = map[Kind]string{
	KindHTML:      "Quack, I want to be a duck!",
	KindScript:    "Meow, I want to be a cat!",
	KindScriptURL: "http://this.is.a.successful.test/",
	KindURL:       "http://hooray.i.am.successfully.transformed/",
}

// TransformHTML is the sample HTML transform.
func TransformHTML(s string) string {
	s = strings.Replace(s, "Hi", "Quack", 1)
	return strings.Replace(s, "transformed", "a duck", 1)
}

// TransformScript is the sample script transform.
func TransformScript(s string) string {
	s = strings.Replace(s, "Hi", "Meow", 1)
	return strings.Replace(s, "transformed", "a cat", 1)
}

// TransformScriptURL is the sample script URL transform.
func TransformScriptURL(s string) string {
	return strings.Replace(s, "scripturl", "successful", 1)
}

// TransformURL is the sample URL transform.
func TransformURL(s string) string {
	s = strings.Replace(s, "hello", "hooray", 1)
	return strings.Replace(s, "an.url", "successfully.transformed", 1)
}

var fragment = regexp.MustCompile(`#.*`)

// LocationFragment returns a URL transform that keeps href and carries the
// input in its fragment, so assigning the result does not navigate away.
func LocationFragment(href string) Transform {
	base := fragment.ReplaceAllString(href, "")
	return func(value string) string {
		return base + "#" + value
	}
}

// SampleTransform returns the sample transform for kind.
func SampleTransform(kind Kind) (Transform, error) {
	switch kind {
	case KindHTML:
		return TransformHTML, nil
	case KindScript:
		return TransformScript, nil
	case KindScriptURL:
		return TransformScriptURL, nil
	case KindURL:
		return TransformURL, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// SamplePolicyName is the name SamplePolicy registers, e.g. "SomeHTMLPolicyName" + suffix.
func SamplePolicyName(kind Kind, suffix string) string {
	return "Some" + kind.String() + "PolicyName" + suffix
}

// SamplePolicy creates a policy that only supports kind, using its sample transform.
func SamplePolicy(f *Factory, kind Kind, suffix string) (*Policy, error) {
	fn, err := SampleTransform(kind)
	if err != nil {
		return nil, err
	}

	var opts PolicyOptions
	switch kind {
	case KindHTML:
		opts.CreateHTML = fn
	case KindScript:
		opts.CreateScript = fn
	case KindScriptURL:
		opts.CreateScriptURL = fn
	case KindURL:
		opts.CreateURL = fn
	}
	return f.CreatePolicy(SamplePolicyName(kind, suffix), opts)
}

// CheckResult is the outcome of checking one sample policy.
type CheckResult struct {
	Kind   Kind
	Policy string
	Got    string
	Want   string
	Err    error
}

// OK reports whether the policy produced the expected value and refused other kinds.
func (r CheckResult) OK() bool {
	return r.Err == nil && r.Got == r.Want
}

// SelfCheck creates a sample policy per kind in f and verifies that it maps
// the sample input to the sample result and refuses every other kind.
// The returned error joins every failure.
func SelfCheck(f *Factory, suffix string) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(Kinds))
	var errs []error

	for _, kind := range Kinds {
		res := CheckResult{Kind: kind, Want: Results[kind]}

		p, err := SamplePolicy(f, kind, suffix)
		if err != nil {
			res.Err = err
			results = append(results, res)
			errs = append(errs, err)
			continue
		}
		res.Policy = p.Name()

		v, err := p.Create(kind, Inputs[kind])
		switch {
		case err != nil:
			res.Err = err
		case v.String() != res.Want:
			res.Got = v.String()
			res.Err = fmt.Errorf("policy %q: got %q, want %q", p.Name(), v.String(), res.Want)
		default:
			res.Got = v.String()
		}

		for _, other := range Kinds {
			if other == kind || res.Err != nil {
				continue
			}
			if _, err := p.Create(other, Inputs[other]); !errors.Is(err, ErrTransformMissing) {
				res.Err = fmt.Errorf("policy %q: create%s was not refused", p.Name(), other)
			}
		}

		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
