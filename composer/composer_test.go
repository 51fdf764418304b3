package composer

import (
	"testing"

	"github.com/gurre/awscmdlet/binder"
	"github.com/gurre/awscmdlet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceType string

type styleConfig interface{ isStyleConfig() }

type styleValue struct{ Value string }

func (*styleValue) isStyleConfig() {}

type styleToken struct{ Value string }

func (*styleToken) isStyleConfig() {}

type updates interface{ isUpdates() }

type dicomUpdates struct {
	Removable []byte
	Updatable []byte
}

type updatesDICOM struct{ Value dicomUpdates }

func (*updatesDICOM) isUpdates() {}

type updatesRevert struct{ Value string }

func (*updatesRevert) isUpdates() {}

type dataTypeConfig struct {
	DataSourceType sourceType
	DataTypeName   *string
}

type formStyle struct {
	HorizontalGap styleConfig
	VerticalGap   styleConfig
}

type formButton struct {
	Children *string
	Excluded *bool
}

type formCTA struct {
	Cancel *formButton
	Submit *formButton
}

type formData struct {
	DataType *dataTypeConfig
	Name     *string
	Style    *formStyle
	Cta      *formCTA
	Tags     map[string]string
	Labels   []string
}

type createFormInput struct {
	AppId   *string
	Form    *formData
	Updates updates
}

func formTree(t *testing.T) *schema.Tree {
	t.Helper()
	tree, err := schema.Build((*createFormInput)(nil), []schema.Param{
		{Name: "AppId", Path: "AppId", Kind: schema.String},
		{Name: "Name", Path: "Form.Name", Kind: schema.String},
		{Name: "DataType_DataSourceType", Path: "Form.DataType.DataSourceType", Kind: schema.String},
		{Name: "DataType_DataTypeName", Path: "Form.DataType.DataTypeName", Kind: schema.String},
		{Name: "HorizontalGap_Value", Path: "Form.Style.HorizontalGap.Value", Kind: schema.String},
		{Name: "HorizontalGap_TokenReference", Path: "Form.Style.HorizontalGap.TokenReference", Kind: schema.String},
		{Name: "VerticalGap_Value", Path: "Form.Style.VerticalGap.Value", Kind: schema.String},
		{Name: "Cancel_Children", Path: "Form.Cta.Cancel.Children", Kind: schema.String},
		{Name: "Submit_Children", Path: "Form.Cta.Submit.Children", Kind: schema.String},
		{Name: "Submit_Excluded", Path: "Form.Cta.Submit.Excluded", Kind: schema.Bool},
		{Name: "Tag", Path: "Form.Tags", Kind: schema.StringMap},
		{Name: "Label", Path: "Form.Labels", Kind: schema.StringList},
		{Name: "RemovableAttributes", Path: "Updates.DICOMUpdates.Removable", Kind: schema.JSON},
		{Name: "RevertToVersionId", Path: "Updates.RevertToVersionId", Kind: schema.String},
	},
		schema.Union{Path: "Form.Style.HorizontalGap", Members: []schema.Member{
			{Name: "Value", Proto: &styleValue{}},
			{Name: "TokenReference", Proto: &styleToken{}},
		}},
		schema.Union{Path: "Form.Style.VerticalGap", Members: []schema.Member{
			{Name: "Value", Proto: &styleValue{}},
		}},
		schema.Union{Path: "Updates", Members: []schema.Member{
			{Name: "DICOMUpdates", Proto: &updatesDICOM{}},
			{Name: "RevertToVersionId", Proto: &updatesRevert{}},
		}},
	)
	require.NoError(t, err)
	return tree
}

func compose(t *testing.T, raw map[string]any) *createFormInput {
	t.Helper()
	tree := formTree(t)
	set, _, err := binder.Bind(tree, raw, binder.Options{})
	require.NoError(t, err)
	in := &createFormInput{}
	_, err = Compose(tree, set, in)
	require.NoError(t, err)
	return in
}

func TestCollapseUnpopulatedSubStructure(t *testing.T) {
	in := compose(t, map[string]any{
		"Name":                    "f1",
		"DataType_DataSourceType": nil,
		"DataType_DataTypeName":   nil,
	})

	require.NotNil(t, in.Form)
	assert.Equal(t, "f1", *in.Form.Name)
	assert.Nil(t, in.Form.DataType)
	assert.Nil(t, in.Form.Style)
	assert.Nil(t, in.Form.Cta)
	assert.Nil(t, in.Form.Tags)
	assert.Nil(t, in.Updates)
	assert.Nil(t, in.AppId)
}

func TestCollapseIsRecursiveAcrossBranches(t *testing.T) {
	in := compose(t, map[string]any{"Submit_Excluded": true})

	require.NotNil(t, in.Form)
	require.NotNil(t, in.Form.Cta)
	require.NotNil(t, in.Form.Cta.Submit)
	assert.True(t, *in.Form.Cta.Submit.Excluded)
	assert.Nil(t, in.Form.Cta.Submit.Children)
	assert.Nil(t, in.Form.Cta.Cancel, "a sibling branch with no values stays absent")
	assert.Nil(t, in.Form.Name)
	assert.Nil(t, in.Form.DataType)
}

func TestNothingSuppliedLeavesRootEmpty(t *testing.T) {
	tree := formTree(t)
	set, _, err := binder.Bind(tree, map[string]any{}, binder.Options{})
	require.NoError(t, err)

	in := &createFormInput{}
	populated, err := Compose(tree, set, in)
	require.NoError(t, err)
	assert.False(t, populated)
	assert.Equal(t, &createFormInput{}, in)
}

func TestEmptyCollectionsMarkParentPresent(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		in := compose(t, map[string]any{"Tag": map[string]string{}})
		require.NotNil(t, in.Form)
		assert.NotNil(t, in.Form.Tags)
		assert.Empty(t, in.Form.Tags)
	})
	t.Run("list", func(t *testing.T) {
		in := compose(t, map[string]any{"Label": []string{}})
		require.NotNil(t, in.Form)
		assert.NotNil(t, in.Form.Labels)
		assert.Empty(t, in.Form.Labels)
	})
}

func TestUnionMemberIsWrapped(t *testing.T) {
	in := compose(t, map[string]any{
		"HorizontalGap_TokenReference": "space.small",
		"VerticalGap_Value":            "8px",
	})

	require.NotNil(t, in.Form)
	require.NotNil(t, in.Form.Style)
	assert.Equal(t, &styleToken{Value: "space.small"}, in.Form.Style.HorizontalGap)
	assert.Equal(t, &styleValue{Value: "8px"}, in.Form.Style.VerticalGap)
}

func TestUnionStructMember(t *testing.T) {
	in := compose(t, map[string]any{"RemovableAttributes": `"eyJhIjoxfQ=="`})

	member, ok := in.Updates.(*updatesDICOM)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), member.Value.Removable)
	assert.Nil(t, member.Value.Updatable)
	assert.Nil(t, in.Form)
}

func TestUnionScalarMember(t *testing.T) {
	in := compose(t, map[string]any{"RevertToVersionId": "3"})
	assert.Equal(t, &updatesRevert{Value: "3"}, in.Updates)
}

func TestComposeRejectsWrongDestination(t *testing.T) {
	tree := formTree(t)
	_, err := Compose(tree, binder.ParameterSet{}, createFormInput{})
	assert.Error(t, err)

	_, err = Compose(tree, binder.ParameterSet{}, &formData{})
	assert.Error(t, err)
}
