package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder"
	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder/types"
	awsx "github.com/gurre/awscmdlet/aws"
)

// AmplifyUIBuilderClient keeps forms in memory, keyed by app, environment
// and form ID.
type AmplifyUIBuilderClient struct {
	awsx.AmplifyUIBuilderClient

	mu      sync.Mutex
	forms   map[string]*types.Form
	creates []*amplifyuibuilder.CreateFormInput
	nextID  int
}

var _ awsx.AmplifyUIBuilderClient = (*AmplifyUIBuilderClient)(nil)

func NewAmplifyUIBuilderClient() *AmplifyUIBuilderClient {
	return &AmplifyUIBuilderClient{forms: make(map[string]*types.Form)}
}

// Creates returns the CreateForm inputs received.
func (m *AmplifyUIBuilderClient) Creates() []*amplifyuibuilder.CreateFormInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*amplifyuibuilder.CreateFormInput(nil), m.creates...)
}

// Forms returns the number of stored forms.
func (m *AmplifyUIBuilderClient) Forms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.forms)
}

func formKey(app, env, id *string) string {
	return aws.ToString(app) + "/" + aws.ToString(env) + "/" + aws.ToString(id)
}

func (m *AmplifyUIBuilderClient) CreateForm(ctx context.Context, params *amplifyuibuilder.CreateFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.CreateFormOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, params)

	data := params.FormToCreate
	if data == nil || data.Name == nil {
		return nil, &types.InvalidParameterException{Message: aws.String("FormToCreate.Name is required")}
	}

	m.nextID++
	form := &types.Form{
		AppId:           params.AppId,
		EnvironmentName: params.EnvironmentName,
		Id:              aws.String(fmt.Sprintf("form-%04d", m.nextID)),
		Name:            data.Name,
		FormActionType:  data.FormActionType,
		DataType:        data.DataType,
		SchemaVersion:   data.SchemaVersion,
		Fields:          data.Fields,
		Style:           data.Style,
		Cta:             data.Cta,
		LabelDecorator:  data.LabelDecorator,
		Tags:            data.Tags,
	}
	m.forms[formKey(form.AppId, form.EnvironmentName, form.Id)] = form
	return &amplifyuibuilder.CreateFormOutput{Entity: form}, nil
}

func (m *AmplifyUIBuilderClient) GetForm(ctx context.Context, params *amplifyuibuilder.GetFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetFormOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	form, ok := m.forms[formKey(params.AppId, params.EnvironmentName, params.Id)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("form not found")}
	}
	return &amplifyuibuilder.GetFormOutput{Form: form}, nil
}

func (m *AmplifyUIBuilderClient) DeleteForm(ctx context.Context, params *amplifyuibuilder.DeleteFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.DeleteFormOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := formKey(params.AppId, params.EnvironmentName, params.Id)
	if _, ok := m.forms[key]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("form not found")}
	}
	delete(m.forms, key)
	return &amplifyuibuilder.DeleteFormOutput{}, nil
}

func (m *AmplifyUIBuilderClient) ListForms(ctx context.Context, params *amplifyuibuilder.ListFormsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListFormsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := aws.ToString(params.AppId) + "/" + aws.ToString(params.EnvironmentName) + "/"
	keys := make([]string, 0, len(m.forms))
	for k := range m.forms {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &amplifyuibuilder.ListFormsOutput{}
	for _, k := range keys {
		f := m.forms[k]
		out.Entities = append(out.Entities, types.FormSummary{
			AppId:           f.AppId,
			EnvironmentName: f.EnvironmentName,
			Id:              f.Id,
			Name:            f.Name,
			FormActionType:  f.FormActionType,
			DataType:        f.DataType,
		})
	}
	return out, nil
}
