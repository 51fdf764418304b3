// Package amplifyuibuilder declares the AWS Amplify UI Builder commands.
package amplifyuibuilder

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder/types"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/operation"
	"github.com/gurre/awscmdlet/schema"
)

// Service is the command group name.
const Service = "amplifyuibuilder"

type client = aws.AmplifyUIBuilderClient

func action(name string) string { return "amplifyuibuilder:" + name }

func appEnv() []schema.Param {
	return []schema.Param{
		{Name: "AppId", Path: "AppId", Kind: schema.String, Required: true, Help: "Amplify app ID"},
		{Name: "EnvironmentName", Path: "EnvironmentName", Kind: schema.String, Required: true, Help: "Amplify backend environment"},
	}
}

func withID(params []schema.Param, help string) []schema.Param {
	return append(params, schema.Param{Name: "Id", Path: "Id", Kind: schema.String, Required: true, Help: help})
}

func paging(params []schema.Param) []schema.Param {
	return append(params,
		schema.Param{Name: "MaxResult", Aliases: []string{"MaxItems"}, Path: "MaxResults", Kind: schema.Int},
		schema.Param{Name: "NextToken", Path: "NextToken", Kind: schema.String},
	)
}

func nextToken(params []schema.Param) []schema.Param {
	return append(params, schema.Param{Name: "NextToken", Path: "NextToken", Kind: schema.String})
}

// formParams covers CreateFormData and UpdateFormData, rooted at root.
func formParams(root string, prefix string) []schema.Param {
	p := func(name, path string, kind schema.Kind, help string) schema.Param {
		return schema.Param{Name: name, Path: root + "." + path, Kind: kind, Help: help}
	}
	params := []schema.Param{
		p(prefix+"_Name", "Name", schema.String, "form name"),
		p(prefix+"_FormActionType", "FormActionType", schema.String, "create or update"),
		p(prefix+"_SchemaVersion", "SchemaVersion", schema.String, "schema version of the form"),
		p(prefix+"_LabelDecorator", "LabelDecorator", schema.String, "required, optional or none"),
		p(prefix+"_Field", "Fields", schema.JSON, "field configurations keyed by field name"),
		p(prefix+"_SectionalElement", "SectionalElements", schema.JSON, "sectional elements keyed by name"),
		p("DataType_DataSourceType", "DataType.DataSourceType", schema.String, "DataStore or Custom"),
		p("DataType_DataTypeName", "DataType.DataTypeName", schema.String, "name of the data model type"),
		p("Cta_Position", "Cta.Position", schema.String, "position of the call to action buttons"),
	}
	for _, button := range []string{"Cancel", "Clear", "Submit"} {
		params = append(params,
			p(button+"_Child", "Cta."+button+".Children", schema.String, "button label"),
			p(button+"_Excluded", "Cta."+button+".Excluded", schema.Bool, "hide the button"),
		)
	}
	for _, gap := range []string{"HorizontalGap", "VerticalGap", "OuterPadding"} {
		params = append(params,
			p(gap+"_TokenReference", "Style."+gap+".TokenReference", schema.String, "theme token reference"),
			p(gap+"_Value", "Style."+gap+".Value", schema.String, "CSS value"),
		)
	}
	return params
}

func formUnions(root string) []schema.Union {
	var unions []schema.Union
	for _, gap := range []string{"HorizontalGap", "VerticalGap", "OuterPadding"} {
		unions = append(unions, schema.Union{
			Path: root + ".Style." + gap,
			Members: []schema.Member{
				{Name: "TokenReference", Proto: &types.FormStyleConfigMemberTokenReference{}},
				{Name: "Value", Proto: &types.FormStyleConfigMemberValue{}},
			},
		})
	}
	return unions
}

func themeParams(root, prefix string) []schema.Param {
	return []schema.Param{
		{Name: prefix + "_Name", Path: root + ".Name", Kind: schema.String, Help: "theme name"},
		{Name: prefix + "_Value", Path: root + ".Values", Kind: schema.JSON, Help: "theme values as a JSON list of {Key, Value}"},
		{Name: prefix + "_Override", Path: root + ".Overrides", Kind: schema.JSON, Help: "overrides as a JSON list of {Key, Value}"},
	}
}

var (
	createForm = operation.New(operation.Spec{
		Service:   Service,
		Name:      "CreateForm",
		IAMAction: action("CreateForm"),
		Summary:   "Creates a new form for an Amplify app.",
		Mutating:  true,
		Params: append(append(appEnv(), formParams("FormToCreate", "FormToCreate")...),
			schema.Param{Name: "FormToCreate_Tag", Path: "FormToCreate.Tags", Kind: schema.StringMap, Help: "tags for the form"},
			schema.Param{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"}),
		Unions:      formUnions("FormToCreate"),
		Select:      "Entity",
		PassThrough: "AppId",
		Target:      "AppId",
	}, client.CreateForm)

	updateForm = operation.New(operation.Spec{
		Service:   Service,
		Name:      "UpdateForm",
		IAMAction: action("UpdateForm"),
		Summary:   "Updates an existing form.",
		Mutating:  true,
		Params: append(append(withID(appEnv(), "form ID"), formParams("UpdatedForm", "UpdatedForm")...),
			schema.Param{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"}),
		Unions:      formUnions("UpdatedForm"),
		Select:      "Entity",
		PassThrough: "Id",
		Target:      "Id",
	}, client.UpdateForm)

	deleteForm = operation.New(operation.Spec{
		Service:     Service,
		Name:        "DeleteForm",
		IAMAction:   action("DeleteForm"),
		Summary:     "Deletes a form from an Amplify app.",
		Mutating:    true,
		Params:      withID(appEnv(), "form ID"),
		PassThrough: "Id",
		Target:      "Id",
	}, client.DeleteForm)

	getForm = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetForm",
		IAMAction:   action("GetForm"),
		Summary:     "Returns an existing form.",
		Params:      withID(appEnv(), "form ID"),
		Select:      "Form",
		PassThrough: "Id",
	}, client.GetForm)

	listForms = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListForms",
		IAMAction:   action("ListForms"),
		Summary:     "Lists the forms of an Amplify app environment.",
		Params:      paging(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ListForms)

	exportForms = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ExportForms",
		IAMAction:   action("ExportForms"),
		Summary:     "Exports the form configurations of an app environment.",
		Params:      nextToken(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ExportForms)

	createTheme = operation.New(operation.Spec{
		Service:   Service,
		Name:      "CreateTheme",
		IAMAction: action("CreateTheme"),
		Summary:   "Creates a theme to apply to the components of an Amplify app.",
		Mutating:  true,
		Params: append(append(appEnv(), themeParams("ThemeToCreate", "ThemeToCreate")...),
			schema.Param{Name: "ThemeToCreate_Tag", Path: "ThemeToCreate.Tags", Kind: schema.StringMap, Help: "tags for the theme"},
			schema.Param{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"}),
		Select:      "Entity",
		PassThrough: "AppId",
		Target:      "AppId",
	}, client.CreateTheme)

	updateTheme = operation.New(operation.Spec{
		Service:   Service,
		Name:      "UpdateTheme",
		IAMAction: action("UpdateTheme"),
		Summary:   "Updates an existing theme.",
		Mutating:  true,
		Params: append(append(withID(appEnv(), "theme ID"), themeParams("UpdatedTheme", "UpdatedTheme")...),
			schema.Param{Name: "UpdatedTheme_Id", Path: "UpdatedTheme.Id", Kind: schema.String, Help: "theme ID inside the update body"},
			schema.Param{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"}),
		Select:      "Entity",
		PassThrough: "Id",
		Target:      "Id",
	}, client.UpdateTheme)

	deleteTheme = operation.New(operation.Spec{
		Service:     Service,
		Name:        "DeleteTheme",
		IAMAction:   action("DeleteTheme"),
		Summary:     "Deletes a theme from an Amplify app.",
		Mutating:    true,
		Params:      withID(appEnv(), "theme ID"),
		PassThrough: "Id",
		Target:      "Id",
	}, client.DeleteTheme)

	getTheme = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetTheme",
		IAMAction:   action("GetTheme"),
		Summary:     "Returns an existing theme.",
		Params:      withID(appEnv(), "theme ID"),
		Select:      "Theme",
		PassThrough: "Id",
	}, client.GetTheme)

	listThemes = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListThemes",
		IAMAction:   action("ListThemes"),
		Summary:     "Lists the themes of an Amplify app environment.",
		Params:      paging(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ListThemes)

	exportThemes = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ExportThemes",
		IAMAction:   action("ExportThemes"),
		Summary:     "Exports the theme configurations of an app environment.",
		Params:      nextToken(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ExportThemes)

	deleteComponent = operation.New(operation.Spec{
		Service:     Service,
		Name:        "DeleteComponent",
		IAMAction:   action("DeleteComponent"),
		Summary:     "Deletes a component from an Amplify app.",
		Mutating:    true,
		Params:      withID(appEnv(), "component ID"),
		PassThrough: "Id",
		Target:      "Id",
	}, client.DeleteComponent)

	getComponent = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetComponent",
		IAMAction:   action("GetComponent"),
		Summary:     "Returns an existing component.",
		Params:      withID(appEnv(), "component ID"),
		Select:      "Component",
		PassThrough: "Id",
	}, client.GetComponent)

	listComponents = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListComponents",
		IAMAction:   action("ListComponents"),
		Summary:     "Lists the components of an Amplify app environment.",
		Params:      paging(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ListComponents)

	exportComponents = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ExportComponents",
		IAMAction:   action("ExportComponents"),
		Summary:     "Exports the component configurations of an app environment.",
		Params:      nextToken(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ExportComponents)

	getMetadata = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetMetadata",
		IAMAction:   action("GetMetadata"),
		Summary:     "Returns the feature flags of an app environment.",
		Params:      appEnv(),
		Select:      "Features",
		PassThrough: "AppId",
	}, client.GetMetadata)

	putMetadataFlag = operation.New(operation.Spec{
		Service:   Service,
		Name:      "PutMetadataFlag",
		IAMAction: action("PutMetadataFlag"),
		Summary:   "Stores a feature flag value for an app environment.",
		Mutating:  true,
		Params: append(appEnv(),
			schema.Param{Name: "FeatureName", Path: "FeatureName", Kind: schema.String, Required: true, Help: "feature flag name"},
			schema.Param{Name: "Body_NewValue", Aliases: []string{"NewValue"}, Path: "Body.NewValue", Kind: schema.String, Required: true, Help: "new flag value"}),
		PassThrough: "FeatureName",
		Target:      "FeatureName",
	}, client.PutMetadataFlag)

	getCodegenJob = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetCodegenJob",
		IAMAction:   action("GetCodegenJob"),
		Summary:     "Returns a code generation job.",
		Params:      withID(appEnv(), "codegen job ID"),
		Select:      "Job",
		PassThrough: "Id",
	}, client.GetCodegenJob)

	listCodegenJobs = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListCodegenJobs",
		IAMAction:   action("ListCodegenJobs"),
		Summary:     "Lists the code generation jobs of an app environment.",
		Params:      paging(appEnv()),
		Select:      "Entities",
		PassThrough: "AppId",
	}, client.ListCodegenJobs)

	tagResource = operation.New(operation.Spec{
		Service:   Service,
		Name:      "TagResource",
		IAMAction: action("TagResource"),
		Summary:   "Tags the resource with the specified ARN.",
		Mutating:  true,
		Params: []schema.Param{
			{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true},
			{Name: "Tag", Path: "Tags", Kind: schema.StringMap, Required: true},
		},
		PassThrough: "ResourceArn",
		Target:      "ResourceArn",
	}, client.TagResource)

	untagResource = operation.New(operation.Spec{
		Service:   Service,
		Name:      "UntagResource",
		IAMAction: action("UntagResource"),
		Summary:   "Removes tags from the resource with the specified ARN.",
		Mutating:  true,
		Params: []schema.Param{
			{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true},
			{Name: "TagKey", Path: "TagKeys", Kind: schema.StringList, Required: true},
		},
		PassThrough: "ResourceArn",
		Target:      "ResourceArn",
	}, client.UntagResource)

	listTagsForResource = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListTagsForResource",
		IAMAction:   action("ListTagsForResource"),
		Summary:     "Returns the tags of the resource with the specified ARN.",
		Params:      []schema.Param{{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true}},
		Select:      "Tags",
		PassThrough: "ResourceArn",
	}, client.ListTagsForResource)
)

// Commands binds every operation to the client returned by provider.
func Commands(provider func(context.Context) (aws.AmplifyUIBuilderClient, error)) []operation.Command {
	return []operation.Command{
		createForm.Bind(provider),
		updateForm.Bind(provider),
		deleteForm.Bind(provider),
		getForm.Bind(provider),
		listForms.Bind(provider),
		exportForms.Bind(provider),
		createTheme.Bind(provider),
		updateTheme.Bind(provider),
		deleteTheme.Bind(provider),
		getTheme.Bind(provider),
		listThemes.Bind(provider),
		exportThemes.Bind(provider),
		deleteComponent.Bind(provider),
		getComponent.Bind(provider),
		listComponents.Bind(provider),
		exportComponents.Bind(provider),
		getMetadata.Bind(provider),
		putMetadataFlag.Bind(provider),
		getCodegenJob.Bind(provider),
		listCodegenJobs.Bind(provider),
		tagResource.Bind(provider),
		untagResource.Bind(provider),
		listTagsForResource.Bind(provider),
	}
}
