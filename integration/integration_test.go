package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	json "github.com/goccy/go-json"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/checkpoint"
	"github.com/gurre/awscmdlet/cli"
	"github.com/gurre/awscmdlet/config"
	"github.com/gurre/awscmdlet/integration/mock"
	"github.com/gurre/s3streamer"
)

type environment struct {
	s3      *mock.S3Client
	ddb     *mock.DynamoDBClient
	imaging *mock.MedicalImagingClient
	ui      *mock.AmplifyUIBuilderClient

	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newEnvironment(t *testing.T) *environment {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return &environment{
		s3:      mock.NewS3Client(),
		ddb:     mock.NewDynamoDBClient(),
		imaging: mock.NewMedicalImagingClient(),
		ui:      mock.NewAmplifyUIBuilderClient(),
	}
}

func (e *environment) run(t *testing.T, args ...string) error {
	t.Helper()
	e.stdout.Reset()
	e.stderr.Reset()

	app := cli.New(
		cli.WithIO(strings.NewReader(""), &e.stdout, &e.stderr),
		cli.WithConnector(func(ctx context.Context, cfg *config.Config) (*aws.Clients, error) {
			return &aws.Clients{
				AmplifyUIBuilder: e.ui,
				MedicalImaging:   e.imaging,
				DynamoDB:         e.ddb,
				S3:               e.s3,
				IAM:              &mock.IAMClient{},
				STS:              &mock.STSClient{ARN: "arn:aws:iam::123456789012:user/operator"},
			}, nil
		}),
		cli.WithStreamer(func(*aws.Clients) s3streamer.Streamer { return e.s3 }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Execute(ctx, args)
}

func jsonLines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestBatchFromS3WithJournalAndReport(t *testing.T) {
	env := newEnvironment(t)
	env.imaging.AddImageSet("ds-0001", "is-a", []byte(`{"Patient":{"DICOM":{"PatientName":"A"}}}`))
	env.imaging.AddImageSet("ds-0001", "is-b", []byte(`{"Patient":{"DICOM":{"PatientName":"B"}}}`))

	env.s3.AddObject("work", "jobs/cleanup.jsonl", jsonLines(
		`{"service":"medicalimaging","operation":"CreateDatastore","parameters":{"DatastoreName":"archive","Tag":{"team":"radiology"}}}`,
		`{"service":"medicalimaging","operation":"GetImageSet","parameters":{"DatastoreId":"ds-0001","ImageSetId":"is-a"},"select":"VersionId"}`,
		`{"service":"medicalimaging","operation":"CopyImageSet","parameters":{"DatastoreId":"ds-0001","SourceImageSetId":"is-a","SourceImageSet_LatestVersionId":"1"}}`,
		`not json`,
		`{"service":"medicalimaging","operation":"DeleteImageSet","parameters":{"DatastoreId":"ds-0001","ImageSetId":"is-b"},"select":"^ImageSetId"}`,
	))

	err := env.run(t, "-o", "text", "--audit-table", "invocations",
		"batch", "--force",
		"--input", "s3://work/jobs/cleanup.jsonl",
		"--resume", "s3://work/state/cleanup.json",
		"--report", "s3://work/reports/cleanup.json",
	)
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, env.stderr.String())
	}

	if _, ok := env.imaging.ImageSet("ds-0001", "is-b"); !ok {
		t.Fatal("image set is-b missing from mock")
	}
	if set, _ := env.imaging.ImageSet("ds-0001", "is-b"); set.State != types.ImageSetStateDeleted {
		t.Errorf("is-b state = %s, want DELETED", set.State)
	}
	if set, _ := env.imaging.ImageSet("ds-0001", "is-a"); len(set.CopiedTo) != 1 {
		t.Errorf("is-a copies = %v, want one", set.CopiedTo)
	}
	if !strings.Contains(env.stdout.String(), "1\n") || !strings.HasSuffix(env.stdout.String(), "is-b\n") {
		t.Errorf("unexpected batch output:\n%s", env.stdout.String())
	}

	raw, ok := env.s3.Object("work", "reports/cleanup.json")
	if !ok {
		t.Fatalf("report not uploaded, keys: %v", env.s3.Keys())
	}
	var report struct {
		BatchID     string           `json:"batchId"`
		Invocations int64            `json:"invocations"`
		Succeeded   int64            `json:"succeeded"`
		Corrupt     int64            `json:"corrupt"`
		Operations  map[string]int64 `json:"operations"`
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if report.Invocations != 4 || report.Succeeded != 4 || report.Corrupt != 1 {
		t.Errorf("report = %+v, want 4 invocations, 4 succeeded, 1 corrupt", report)
	}
	if report.Operations["medicalimaging:DeleteImageSet"] != 1 {
		t.Errorf("operations = %v", report.Operations)
	}

	store, err := checkpoint.Open("s3://work/state/cleanup.json", env.s3)
	if err != nil {
		t.Fatal(err)
	}
	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}
	if state.Line != 5 || state.BatchID != report.BatchID {
		t.Errorf("checkpoint = %+v, want line 5 of batch %s", state, report.BatchID)
	}

	items := env.ddb.Items("invocations")
	if len(items) != 3 {
		t.Fatalf("journal has %d entries, want one per mutating line", len(items))
	}
	for _, item := range items {
		batchID, _ := item["batch_id"].(*ddbtypes.AttributeValueMemberS)
		if batchID == nil || batchID.Value != report.BatchID {
			t.Errorf("journal entry %v not tagged with batch %s", item["operation"], report.BatchID)
		}
	}
}

func TestBatchResumeAfterFailure(t *testing.T) {
	env := newEnvironment(t)
	env.imaging.AddImageSet("ds-0001", "is-a", []byte(`{}`))

	input := filepath.Join(t.TempDir(), "work.jsonl")
	if err := os.WriteFile(input, jsonLines(
		`{"service":"medicalimaging","operation":"DeleteImageSet","parameters":{"DatastoreId":"ds-0001","ImageSetId":"is-a"},"force":true}`,
		`{"service":"medicalimaging","operation":"GetImageSet","parameters":{"DatastoreId":"ds-0001","ImageSetId":"is-late"}}`,
		`{"service":"medicalimaging","operation":"ListDatastores","parameters":{}}`,
	), 0o600); err != nil {
		t.Fatal(err)
	}
	resume := "file://" + filepath.Join(t.TempDir(), "state", "work.json")

	err := env.run(t, "batch", "--input", input, "--resume", resume)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected failure on line 2, got %v", err)
	}

	env.imaging.AddImageSet("ds-0001", "is-late", []byte(`{}`))
	if err := env.run(t, "batch", "--input", input, "--resume", resume); err != nil {
		t.Fatalf("resumed batch failed: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "1 already done") {
		t.Errorf("expected one resumed line:\n%s", env.stderr.String())
	}

	deletes := 0
	for _, c := range env.imaging.Calls() {
		if c == "DeleteImageSet" {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("DeleteImageSet called %d times, want 1", deletes)
	}
}

func TestUpdateImageSetMetadataFromBlobs(t *testing.T) {
	env := newEnvironment(t)
	env.imaging.AddImageSet("ds-0001", "is-a", []byte(`{}`))

	updatable := []byte(`{"SchemaVersion":1.1,"Patient":{"DICOM":{"PatientName":"Doe^Jane"}}}`)
	env.s3.AddObject("blobs", "updates/is-a.json", updatable)

	removable := filepath.Join(t.TempDir(), "remove.json")
	if err := os.WriteFile(removable, []byte(`{"SchemaVersion":1.1,"Study":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	input, err := json.Marshal(map[string]any{
		"DatastoreId":                     "ds-0001",
		"ImageSetId":                      "is-a",
		"LatestVersionId":                 "1",
		"DICOMUpdates_UpdatableAttribute": "s3://blobs/updates/is-a.json",
		"DICOMUpdates_RemovableAttribute": "fileb://" + removable,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.run(t, "-o", "text", "medicalimaging", "update-image-set-metadata", "--force",
		"--cli-input-json", string(input), "--select", "LatestVersionId"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := env.stdout.String(); got != "2\n" {
		t.Errorf("output = %q, want the new version", got)
	}

	set, _ := env.imaging.ImageSet("ds-0001", "is-a")
	if len(set.Updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(set.Updates))
	}
	member, ok := set.Updates[0].(*types.MetadataUpdatesMemberDICOMUpdates)
	if !ok {
		t.Fatalf("update variant = %T, want DICOMUpdates", set.Updates[0])
	}
	if !bytes.Equal(member.Value.UpdatableAttributes, updatable) {
		t.Errorf("updatable attributes = %s", member.Value.UpdatableAttributes)
	}
	if !bytes.Contains(member.Value.RemovableAttributes, []byte(`"Study"`)) {
		t.Errorf("removable attributes = %s", member.Value.RemovableAttributes)
	}
}

func TestUpdateImageSetMetadataConflictingVariants(t *testing.T) {
	env := newEnvironment(t)
	env.imaging.AddImageSet("ds-0001", "is-a", []byte(`{}`))

	err := env.run(t, "medicalimaging", "update-image-set-metadata", "--force",
		"--datastore-id", "ds-0001", "--image-set-id", "is-a", "--latest-version-id", "1",
		"--revert-to-version-id", "1",
		"--cli-input-json", `{"DICOMUpdates_UpdatableAttribute":"{}"}`)
	if err == nil {
		t.Fatal("expected an error for two union variants")
	}
	for _, c := range env.imaging.Calls() {
		if c == "UpdateImageSetMetadata" {
			t.Fatal("conflicting request reached the service")
		}
	}
}

func TestFormLifecycle(t *testing.T) {
	env := newEnvironment(t)
	scope := []string{"--app-id", "app1", "--environment-name", "staging"}

	for _, name := range []string{"Signup", "Profile"} {
		args := append([]string{"amplifyuibuilder", "create-form", "--force", "--form-to-create-name", name,
			"--data-type-data-source-type", "DataStore", "--data-type-data-type-name", name}, scope...)
		if err := env.run(t, args...); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}

	if err := env.run(t, append([]string{"-o", "text", "amplifyuibuilder", "get-form", "--id", "form-0002", "--select", "Form.Name"}, scope...)...); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := env.stdout.String(); got != "Profile\n" {
		t.Errorf("form name = %q", got)
	}

	if err := env.run(t, append([]string{"amplifyuibuilder", "delete-form", "--id", "form-0001", "--force"}, scope...)...); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := env.run(t, append([]string{"amplifyuibuilder", "list-forms"}, scope...)...); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var forms []struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	}
	if err := json.Unmarshal(env.stdout.Bytes(), &forms); err != nil {
		t.Fatalf("invalid list output: %v\n%s", err, env.stdout.String())
	}
	if len(forms) != 1 || forms[0].Name != "Profile" {
		t.Errorf("forms = %+v, want only Profile", forms)
	}
	if env.ui.Forms() != 1 {
		t.Errorf("mock holds %d forms", env.ui.Forms())
	}
}

func TestCreateDatastoreOutputFormats(t *testing.T) {
	env := newEnvironment(t)

	if err := env.run(t, "-o", "yaml", "medicalimaging", "create-datastore", "--force", "--datastore-name", "archive"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := env.stdout.String(); !strings.Contains(got, "DatastoreId: ds-0001") || !strings.Contains(got, "DatastoreStatus: CREATING") {
		t.Errorf("yaml output:\n%s", got)
	}

	out, err := env.imaging.GetDatastore(context.Background(), &medicalimaging.GetDatastoreInput{DatastoreId: awssdk.String("ds-0001")})
	if err != nil {
		t.Fatal(err)
	}
	if awssdk.ToString(out.DatastoreProperties.DatastoreName) != "archive" {
		t.Errorf("datastore name = %s", awssdk.ToString(out.DatastoreProperties.DatastoreName))
	}
}
