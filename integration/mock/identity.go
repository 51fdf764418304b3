package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSClient reports a fixed caller.
type STSClient struct {
	ARN string
}

func (m *STSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{
		Arn:     aws.String(m.ARN),
		Account: aws.String("123456789012"),
	}, nil
}

// IAMClient allows exactly the actions in Allowed.
type IAMClient struct {
	Allowed map[string]bool

	mu          sync.Mutex
	simulations []iam.SimulatePrincipalPolicyInput
}

func (m *IAMClient) SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	m.mu.Lock()
	m.simulations = append(m.simulations, *params)
	m.mu.Unlock()

	out := &iam.SimulatePrincipalPolicyOutput{}
	for _, action := range params.ActionNames {
		decision := iamtypes.PolicyEvaluationDecisionTypeImplicitDeny
		if m.Allowed[action] {
			decision = iamtypes.PolicyEvaluationDecisionTypeAllowed
		}
		out.EvaluationResults = append(out.EvaluationResults, iamtypes.EvaluationResult{
			EvalActionName: aws.String(action),
			EvalDecision:   decision,
		})
	}
	return out, nil
}

// Simulations returns every simulation request received.
func (m *IAMClient) Simulations() []iam.SimulatePrincipalPolicyInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]iam.SimulatePrincipalPolicyInput(nil), m.simulations...)
}
