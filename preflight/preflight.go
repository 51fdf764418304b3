// Package preflight checks, before any service call, that the calling
// principal is allowed to perform an operation's IAM action.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/gurre/awscmdlet/aws"
)

// ErrDenied is returned when the simulated decision is anything but allowed.
var ErrDenied = errors.New("action not allowed")

// Checker simulates the caller's policies with IAM. The caller identity is
// resolved once and decisions are cached per action.
type Checker struct {
	sts aws.STSClient
	iam aws.IAMClient

	mu        sync.Mutex
	principal string
	decisions map[string]types.PolicyEvaluationDecisionType
}

func NewChecker(stsClient aws.STSClient, iamClient aws.IAMClient) *Checker {
	return &Checker{
		sts:       stsClient,
		iam:       iamClient,
		decisions: make(map[string]types.PolicyEvaluationDecisionType),
	}
}

// Authorize fails with ErrDenied unless action is allowed for the caller.
func (c *Checker) Authorize(ctx context.Context, action string) error {
	principal, err := c.Principal(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	decision, cached := c.decisions[action]
	c.mu.Unlock()

	if !cached {
		out, err := c.iam.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
			PolicySourceArn: awssdk.String(principal),
			ActionNames:     []string{action},
		})
		if err != nil {
			return fmt.Errorf("failed to simulate %s for %s: %w", action, principal, err)
		}
		decision = types.PolicyEvaluationDecisionTypeImplicitDeny
		for _, r := range out.EvaluationResults {
			if awssdk.ToString(r.EvalActionName) == action {
				decision = r.EvalDecision
				break
			}
		}
		c.mu.Lock()
		c.decisions[action] = decision
		c.mu.Unlock()
	}

	if decision != types.PolicyEvaluationDecisionTypeAllowed {
		return fmt.Errorf("%w: %s is %s for %s", ErrDenied, action, decision, principal)
	}
	return nil
}

// Principal returns the ARN IAM can simulate for the caller.
func (c *Checker) Principal(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal != "" {
		return c.principal, nil
	}

	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	c.principal = PolicySource(awssdk.ToString(out.Arn))
	return c.principal, nil
}

// PolicySource converts an STS assumed-role ARN into the ARN of its IAM role.
// Other ARNs are returned unchanged.
//
//	arn:aws:sts::123456789012:assumed-role/Deployer/session -> arn:aws:iam::123456789012:role/Deployer
func PolicySource(callerARN string) string {
	parts := strings.SplitN(callerARN, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" {
		return callerARN
	}
	resource := strings.Split(parts[5], "/")
	if len(resource) < 2 || resource[0] != "assumed-role" {
		return callerARN
	}
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", parts[1], parts[4], resource[1])
}
