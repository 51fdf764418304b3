package amplifyuibuilder

import (
	"context"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder"
	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder/types"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/binder"
	"github.com/gurre/awscmdlet/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records the requests it receives; unimplemented methods panic
// through the nil embedded interface.
type fakeClient struct {
	aws.AmplifyUIBuilderClient
	createForm  *sdk.CreateFormInput
	deleteForm  *sdk.DeleteFormInput
	putMetadata *sdk.PutMetadataFlagInput
}

func (f *fakeClient) CreateForm(ctx context.Context, in *sdk.CreateFormInput, _ ...func(*sdk.Options)) (*sdk.CreateFormOutput, error) {
	f.createForm = in
	return &sdk.CreateFormOutput{Entity: &types.Form{Id: awssdk.String("f-1"), Name: in.FormToCreate.Name}}, nil
}

func (f *fakeClient) DeleteForm(ctx context.Context, in *sdk.DeleteFormInput, _ ...func(*sdk.Options)) (*sdk.DeleteFormOutput, error) {
	f.deleteForm = in
	return &sdk.DeleteFormOutput{}, nil
}

func (f *fakeClient) PutMetadataFlag(ctx context.Context, in *sdk.PutMetadataFlagInput, _ ...func(*sdk.Options)) (*sdk.PutMetadataFlagOutput, error) {
	f.putMetadata = in
	return &sdk.PutMetadataFlagOutput{}, nil
}

func commands(f *fakeClient) map[string]operation.Command {
	byName := make(map[string]operation.Command)
	for _, cmd := range Commands(func(context.Context) (aws.AmplifyUIBuilderClient, error) { return f, nil }) {
		byName[cmd.Info().Name] = cmd
	}
	return byName
}

func TestCatalog(t *testing.T) {
	cmds := Commands(nil)
	require.Len(t, cmds, 23)

	seen := make(map[string]bool)
	for _, cmd := range cmds {
		info := cmd.Info()
		assert.False(t, seen[info.Name], "duplicate %s", info.Name)
		seen[info.Name] = true
		assert.Equal(t, Service, info.Service)
		assert.Equal(t, "amplifyuibuilder:"+info.Name, info.IAMAction)
		assert.NotEmpty(t, info.Summary, info.Name)
		if info.Mutating {
			assert.NotEmpty(t, info.Target, "%s needs a confirmation target", info.Name)
		}
		mutatingVerb := strings.HasPrefix(info.Name, "Create") || strings.HasPrefix(info.Name, "Update") ||
			strings.HasPrefix(info.Name, "Delete") || strings.HasPrefix(info.Name, "Put") ||
			strings.HasPrefix(info.Name, "Tag") || strings.HasPrefix(info.Name, "Untag")
		assert.Equal(t, mutatingVerb, info.Mutating, info.Name)
	}
}

func TestCreateFormCollapsesUnpopulatedStructures(t *testing.T) {
	f := &fakeClient{}
	res, err := commands(f)["CreateForm"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{"AppId": "app-123", "EnvironmentName": "staging", "FormToCreate_Name": "f1"},
		Force:  true,
	})
	require.NoError(t, err)

	in := f.createForm
	require.NotNil(t, in)
	require.NotNil(t, in.FormToCreate)
	assert.Equal(t, "f1", *in.FormToCreate.Name)
	assert.Nil(t, in.FormToCreate.DataType)
	assert.Nil(t, in.FormToCreate.Style)
	assert.Nil(t, in.FormToCreate.Cta)
	assert.Nil(t, in.FormToCreate.Tags)

	form, ok := res.Value.(*types.Form)
	require.True(t, ok, "default selection is the created entity")
	assert.Equal(t, "f-1", *form.Id)
}

func TestCreateFormNestedParameters(t *testing.T) {
	f := &fakeClient{}
	_, err := commands(f)["CreateForm"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{
			"AppId":                       "app-123",
			"EnvironmentName":             "staging",
			"FormToCreate_Name":           "contact",
			"DataType_DataSourceType":     "Custom",
			"DataType_DataTypeName":       "Contact",
			"HorizontalGap_Value":         "4px",
			"OuterPadding_TokenReference": "space.small",
			"Submit_Child":                "Send",
			"Cancel_Excluded":             true,
			"FormToCreate_Field":          `{"email":{"Label":"Email address"}}`,
			"FormToCreate_Tag":            map[string]any{"team": "web"},
		},
		Force: true,
	})
	require.NoError(t, err)

	data := f.createForm.FormToCreate
	require.NotNil(t, data.DataType)
	assert.Equal(t, types.FormDataSourceType("Custom"), data.DataType.DataSourceType)
	assert.Equal(t, "Contact", *data.DataType.DataTypeName)

	require.NotNil(t, data.Style)
	assert.Equal(t, &types.FormStyleConfigMemberValue{Value: "4px"}, data.Style.HorizontalGap)
	assert.Equal(t, &types.FormStyleConfigMemberTokenReference{Value: "space.small"}, data.Style.OuterPadding)
	assert.Nil(t, data.Style.VerticalGap)

	require.NotNil(t, data.Cta)
	assert.Equal(t, "Send", *data.Cta.Submit.Children)
	assert.True(t, *data.Cta.Cancel.Excluded)
	assert.Nil(t, data.Cta.Clear)

	require.Contains(t, data.Fields, "email")
	assert.Equal(t, "Email address", *data.Fields["email"].Label)
	assert.Equal(t, map[string]string{"team": "web"}, data.Tags)
}

func TestCreateFormStyleUnionConflict(t *testing.T) {
	f := &fakeClient{}
	_, err := commands(f)["CreateForm"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{
			"AppId":                      "app-123",
			"EnvironmentName":            "staging",
			"VerticalGap_Value":          "4px",
			"VerticalGap_TokenReference": "space.small",
		},
		Force: true,
	})
	assert.ErrorIs(t, err, binder.ErrUnionConflict)
	assert.Nil(t, f.createForm)
}

func TestCreateFormPassThrough(t *testing.T) {
	f := &fakeClient{}
	res, err := commands(f)["CreateForm"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{"AppId": "app-123", "EnvironmentName": "staging", "FormToCreate_Name": "f1"},
		Select: "^AppId",
		Force:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "app-123", res.Value)
	assert.NotNil(t, f.createForm)
}

func TestDeleteFormSelectsWholeResponse(t *testing.T) {
	f := &fakeClient{}
	res, err := commands(f)["DeleteForm"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{"AppId": "app-123", "EnvironmentName": "staging", "Id": "f-1"},
		Force:  true,
	})
	require.NoError(t, err)
	assert.IsType(t, &sdk.DeleteFormOutput{}, res.Value)
	assert.Equal(t, "f-1", *f.deleteForm.Id)
}

func TestPutMetadataFlagAlias(t *testing.T) {
	f := &fakeClient{}
	_, err := commands(f)["PutMetadataFlag"].Execute(context.Background(), operation.Env{}, operation.Request{
		Inputs: map[string]any{"AppId": "a", "EnvironmentName": "e", "FeatureName": "autoGenerateForms", "newvalue": "true"},
		Force:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, f.putMetadata.Body)
	assert.Equal(t, "true", *f.putMetadata.Body.NewValue)
}
