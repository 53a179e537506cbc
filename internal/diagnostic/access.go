// Package diagnostic checks whether the current identity may read what the
// dashboard shows.
package diagnostic

import (
	"context"
	"fmt"
	"strings"

	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	authorizationclient "k8s.io/client-go/kubernetes/typed/authorization/v1"
)

// Requirement is one permission the dashboard relies on
type Requirement struct {
	Verb        string
	Group       string
	Resource    string
	Subresource string
	// ClusterScoped requirements are checked without a namespace
	ClusterScoped bool
	// Optional requirements degrade a panel instead of breaking the dashboard
	Optional bool
}

// String renders the requirement the way `kubectl auth can-i` takes it
func (r Requirement) String() string {
	resource := r.Resource
	if r.Group != "" {
		resource += "." + r.Group
	}
	if r.Subresource != "" {
		resource += "/" + r.Subresource
	}
	return r.Verb + " " + resource
}

// Requirements lists every read the dashboard performs
var Requirements = []Requirement{
	{Verb: "list", Group: "batch", Resource: "jobs"},
	{Verb: "list", Resource: "pods"},
	{Verb: "get", Resource: "pods"},
	{Verb: "get", Resource: "pods", Subresource: "log"},
	{Verb: "list", Resource: "resourcequotas"},
	{Verb: "list", Resource: "nodes", ClusterScoped: true, Optional: true},
}

// AccessResult is the outcome of one SelfSubjectAccessReview
type AccessResult struct {
	Requirement Requirement
	Allowed     bool
	Reason      string
}

// Message returns a human-friendly summary of a denied check
func (r AccessResult) Message(namespace string) string {
	if r.Allowed {
		return ""
	}
	cmd := "kubectl auth can-i " + r.Requirement.String()
	if !r.Requirement.ClusterScoped {
		cmd += " -n " + namespace
	}
	msg := fmt.Sprintf("cannot %s", r.Requirement)
	if r.Reason != "" {
		msg += " (" + r.Reason + ")"
	}
	return msg + " • verify with `" + cmd + "`"
}

// AccessReport holds the results of CheckAccess in Requirements order
type AccessReport struct {
	Namespace string
	Results   []AccessResult
}

// Denied returns the failed checks
func (r *AccessReport) Denied() []AccessResult {
	var denied []AccessResult
	for _, res := range r.Results {
		if !res.Allowed {
			denied = append(denied, res)
		}
	}
	return denied
}

// Usable reports whether every required (non-optional) check passed
func (r *AccessReport) Usable() bool {
	for _, res := range r.Denied() {
		if !res.Requirement.Optional {
			return false
		}
	}
	return true
}

// CheckAccess performs one SelfSubjectAccessReview per requirement
func CheckAccess(ctx context.Context, client authorizationclient.AuthorizationV1Interface, namespace string) (*AccessReport, error) {
	report := &AccessReport{Namespace: namespace, Results: make([]AccessResult, 0, len(Requirements))}

	for _, req := range Requirements {
		attrs := &authorizationv1.ResourceAttributes{
			Verb:        req.Verb,
			Group:       req.Group,
			Resource:    req.Resource,
			Subresource: req.Subresource,
		}
		if !req.ClusterScoped {
			attrs.Namespace = namespace
		}
		sar := &authorizationv1.SelfSubjectAccessReview{
			Spec: authorizationv1.SelfSubjectAccessReviewSpec{ResourceAttributes: attrs},
		}

		resp, err := client.SelfSubjectAccessReviews().Create(ctx, sar, metav1.CreateOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to review %s: %w", req, err)
		}

		var details []string
		if resp.Status.Reason != "" {
			details = append(details, resp.Status.Reason)
		}
		if resp.Status.EvaluationError != "" {
			details = append(details, resp.Status.EvaluationError)
		}
		report.Results = append(report.Results, AccessResult{
			Requirement: req,
			Allowed:     resp.Status.Allowed,
			Reason:      strings.TrimSpace(strings.Join(details, " • ")),
		})
	}
	return report, nil
}
