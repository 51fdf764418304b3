package schema

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceType string

type styleConfig interface{ isStyleConfig() }

type styleMemberValue struct{ Value string }

func (*styleMemberValue) isStyleConfig() {}

type styleMemberToken struct{ Value string }

func (*styleMemberToken) isStyleConfig() {}

type spacing struct {
	Top    *string
	Bottom *string
}

type styleMemberSpacing struct{ Value spacing }

func (*styleMemberSpacing) isStyleConfig() {}

type dataType struct {
	DataSourceType sourceType
	DataTypeName   *string
}

type style struct {
	HorizontalGap styleConfig
}

type formData struct {
	DataType *dataType
	Name     *string
	Style    *style
	Tags     map[string]string
	Labels   []string
}

type createInput struct {
	AppId  *string
	Form   *formData
	Limit  *int32
	Force  *bool
	Body   []byte
	Stream io.Reader
}

func formParams() []Param {
	return []Param{
		{Name: "AppId", Path: "AppId", Kind: String, Required: true},
		{Name: "Name", Aliases: []string{"FormName"}, Path: "Form.Name", Kind: String},
		{Name: "DataType_DataSourceType", Path: "Form.DataType.DataSourceType", Kind: String},
		{Name: "DataType_DataTypeName", Path: "Form.DataType.DataTypeName", Kind: String},
		{Name: "HorizontalGap_Value", Path: "Form.Style.HorizontalGap.Value", Kind: String},
		{Name: "HorizontalGap_TokenReference", Path: "Form.Style.HorizontalGap.TokenReference", Kind: String},
		{Name: "Tag", Path: "Form.Tags", Kind: StringMap},
	}
}

var gapUnion = Union{
	Path: "Form.Style.HorizontalGap",
	Members: []Member{
		{Name: "Value", Proto: &styleMemberValue{}},
		{Name: "TokenReference", Proto: &styleMemberToken{}},
	},
}

func TestBuildTree(t *testing.T) {
	tree, err := Build((*createInput)(nil), formParams(), gapUnion)
	require.NoError(t, err)

	form := tree.Root.child("Form")
	require.NotNil(t, form)
	assert.Equal(t, NodeStruct, form.Kind)
	assert.True(t, form.Pointer)

	gap := form.child("Style").child("HorizontalGap")
	require.NotNil(t, gap)
	assert.Equal(t, NodeUnion, gap.Kind)
	assert.Len(t, gap.Children, 2)
	assert.Len(t, tree.Unions(), 1)

	leaf := tree.Leaf("HorizontalGap_Value")
	require.NotNil(t, leaf)
	assert.Equal(t, "Value", leaf.Field)

	assert.ElementsMatch(t, []string{"DataType_DataSourceType", "DataType_DataTypeName"},
		form.child("DataType").ParamNames())
}

func TestUnionPathCreatesUnionNode(t *testing.T) {
	union := Union{
		Path: "Form.Style.HorizontalGap",
		Members: []Member{
			{Name: "TokenReference", Proto: &styleMemberToken{}},
			{Name: "Spacing", Proto: &styleMemberSpacing{}},
		},
	}
	params := []Param{
		{Name: "HorizontalGap_TokenReference", Path: "Form.Style.HorizontalGap.TokenReference", Kind: String},
		{Name: "Spacing_Top", Path: "Form.Style.HorizontalGap.Spacing.Top", Kind: String},
		{Name: "Spacing_Bottom", Path: "Form.Style.HorizontalGap.Spacing.Bottom", Kind: String},
	}
	tree, err := Build((*createInput)(nil), params, union)
	require.NoError(t, err)

	require.Len(t, tree.Unions(), 1)
	gap := tree.Unions()[0]
	require.NotNil(t, gap)
	assert.Equal(t, NodeUnion, gap.Kind)
	assert.Same(t, gap, tree.Root.child("Form").child("Style").child("HorizontalGap"))

	token := gap.child("TokenReference")
	require.NotNil(t, token)
	assert.Equal(t, NodeMember, token.Kind)
	leaf := tree.Leaf("HorizontalGap_TokenReference")
	require.NotNil(t, leaf)
	assert.Same(t, leaf, token.child("Value"))
	assert.Equal(t, NodeLeaf, leaf.Kind)

	value := gap.child("Spacing").child("Value")
	require.NotNil(t, value)
	assert.Equal(t, NodeStruct, value.Kind)
	assert.False(t, value.Pointer)
	assert.Len(t, value.Children, 2)
	assert.Same(t, tree.Leaf("Spacing_Top"), value.child("Top"))
	assert.Same(t, tree.Leaf("Spacing_Bottom"), value.child("Bottom"))
}

func TestLookupIsCaseInsensitiveAndKnowsAliases(t *testing.T) {
	tree := MustBuild(&createInput{}, formParams(), gapUnion)

	p, ok := tree.Lookup("formname")
	require.True(t, ok)
	assert.Equal(t, "Name", p.Name)

	p, ok = tree.Lookup("APPID")
	require.True(t, ok)
	assert.True(t, p.Required)

	_, ok = tree.Lookup("Nope")
	assert.False(t, ok)
}

func TestBuildRejectsBadTables(t *testing.T) {
	testCases := []struct {
		name   string
		params []Param
		unions []Union
	}{
		{"unknown field", []Param{{Name: "X", Path: "Missing", Kind: String}}, nil},
		{"unknown nested field", []Param{{Name: "X", Path: "Form.Missing", Kind: String}}, nil},
		{"kind mismatch", []Param{{Name: "X", Path: "Limit", Kind: String}}, nil},
		{"list into scalar", []Param{{Name: "X", Path: "Form.Name", Kind: StringList}}, nil},
		{"map into list", []Param{{Name: "X", Path: "Form.Labels", Kind: StringMap}}, nil},
		{"descend into scalar", []Param{{Name: "X", Path: "AppId.Value", Kind: String}}, nil},
		{"undeclared union", []Param{{Name: "X", Path: "Form.Style.HorizontalGap.Value", Kind: String}}, nil},
		{"unknown member", []Param{{Name: "X", Path: "Form.Style.HorizontalGap.Other", Kind: String}}, []Union{gapUnion}},
		{"duplicate name", []Param{
			{Name: "X", Path: "AppId", Kind: String},
			{Name: "x", Path: "Form.Name", Kind: String},
		}, nil},
		{"duplicate path", []Param{
			{Name: "X", Path: "AppId", Kind: String},
			{Name: "Y", Path: "AppId", Kind: String},
		}, nil},
		{"wrong member type", []Param{{Name: "X", Path: "Form.Style.HorizontalGap.Value", Kind: String}},
			[]Union{{Path: "Form.Style.HorizontalGap", Members: []Member{{Name: "Value", Proto: &dataType{}}}}}},
		{"member is not a union variant", []Param{{Name: "X", Path: "Form.Style.HorizontalGap.Value", Kind: String}},
			[]Union{{Path: "Form.Style.HorizontalGap", Members: []Member{{Name: "Value", Proto: styleMemberValue{}}}}}},
		{"descend into scalar member", []Param{{Name: "X", Path: "Form.Style.HorizontalGap.Value.Top", Kind: String}},
			[]Union{gapUnion}},
		{"missing path", []Param{{Name: "X"}}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build((*createInput)(nil), tc.params, tc.unions...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestBuildAcceptsEveryKind(t *testing.T) {
	params := []Param{
		{Name: "Limit", Path: "Limit", Kind: Int},
		{Name: "Force", Path: "Force", Kind: Bool},
		{Name: "Labels", Path: "Form.Labels", Kind: StringList},
		{Name: "DataType", Path: "Form.DataType", Kind: JSON},
		{Name: "Body", Path: "Body", Kind: Blob},
		{Name: "Stream", Path: "Stream", Kind: Blob},
	}
	_, err := Build(createInput{}, params)
	assert.NoError(t, err)
}

func TestBuildRejectsNonStructInput(t *testing.T) {
	_, err := Build("nope", nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
