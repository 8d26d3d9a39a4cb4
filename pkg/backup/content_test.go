package backup

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableaubackup/pkg/tableau"
)

// fakeS3 captures every PutObject so tests can inspect keys and bodies.
type fakeS3 struct {
	inputs  []*s3.PutObjectInput
	objects map[string][]byte
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, params)
	f.objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	out := make([]string, 0, len(f.inputs))
	for _, in := range f.inputs {
		out = append(out, aws.ToString(in.Key))
	}
	return out
}

// fakeSite fakes the Tableau client surface the backup passes use.
type fakeSite struct {
	workbooks   []tableau.Workbook
	flows       []tableau.Flow
	datasources []tableau.Datasource

	users         []tableau.User
	groups        []tableau.Group
	groupMembers  map[string][]tableau.GroupMember
	projects      []tableau.Project
	favorites     map[string][]tableau.Favorite
	subscriptions []tableau.Subscription
	customViews   []tableau.CustomView
	tasks         []tableau.ExtractRefreshTask
	connections   []tableau.VirtualConnection

	failDownloads map[string]bool
	listErr       error
}

func (f *fakeSite) ListWorkbooks(ctx context.Context) ([]tableau.Workbook, tableau.Pagination, error) {
	return f.workbooks, tableau.Pagination{PageNumber: "1"}, f.listErr
}

func (f *fakeSite) ListFlows(ctx context.Context) ([]tableau.Flow, tableau.Pagination, error) {
	return f.flows, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) ListDatasources(ctx context.Context) ([]tableau.Datasource, tableau.Pagination, error) {
	return f.datasources, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) download(id string) (io.ReadCloser, error) {
	if f.failDownloads[id] {
		return nil, errors.New("download failed")
	}
	return io.NopCloser(strings.NewReader("content-" + id)), nil
}

func (f *fakeSite) DownloadWorkbook(ctx context.Context, id string) (io.ReadCloser, error) {
	return f.download(id)
}

func (f *fakeSite) DownloadFlow(ctx context.Context, id string) (io.ReadCloser, error) {
	return f.download(id)
}

func (f *fakeSite) DownloadDatasource(ctx context.Context, id string) (io.ReadCloser, error) {
	return f.download(id)
}

func (f *fakeSite) ListUsers(ctx context.Context) ([]tableau.User, tableau.Pagination, error) {
	return f.users, tableau.Pagination{PageNumber: "1", PageSize: "100"}, nil
}

func (f *fakeSite) ListGroups(ctx context.Context) ([]tableau.Group, tableau.Pagination, error) {
	return f.groups, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) ListGroupUsers(ctx context.Context, groupID string) ([]tableau.GroupMember, error) {
	return f.groupMembers[groupID], nil
}

func (f *fakeSite) ListProjects(ctx context.Context) ([]tableau.Project, tableau.Pagination, error) {
	return f.projects, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) ListFavorites(ctx context.Context, user tableau.Ref) ([]tableau.Favorite, error) {
	favs := f.favorites[user.ID]
	for i := range favs {
		favs[i].User = user
	}
	return favs, nil
}

func (f *fakeSite) ListSubscriptions(ctx context.Context) ([]tableau.Subscription, tableau.Pagination, error) {
	return f.subscriptions, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) ListCustomViews(ctx context.Context) ([]tableau.CustomView, tableau.Pagination, error) {
	return f.customViews, tableau.Pagination{PageNumber: "1"}, nil
}

func (f *fakeSite) ListExtractRefreshTasks(ctx context.Context) ([]tableau.ExtractRefreshTask, error) {
	return f.tasks, nil
}

func (f *fakeSite) ListVirtualConnections(ctx context.Context) ([]tableau.VirtualConnection, error) {
	return f.connections, nil
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestFolderFormat(t *testing.T) {
	ts := mustTime(t, "2026-08-24T10:30:05Z")
	assert.Equal(t, "backup_tableau_cloud_pablosite_20260824_103005/", Folder(ts))
}

func TestRunContentBackup(t *testing.T) {
	site := &fakeSite{
		workbooks: []tableau.Workbook{
			{ID: "wb-1", Name: "Sales"},
			{ID: "wb-2", Name: "Q3/Forecast"},
		},
		flows: []tableau.Flow{
			{ID: "fl-1", Name: "Cleanup"},
		},
		datasources: []tableau.Datasource{
			{ID: "ds-1", Name: "Orders"},
		},
	}
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	res, err := RunContentBackup(context.Background(), site, w, "run/", Limits{Workbooks: 3, Datasources: 3, PrepFlows: 3})
	require.NoError(t, err)

	require.Len(t, res.Workbooks, 2)
	require.Len(t, res.PrepFlows, 1)
	require.Len(t, res.Datasources, 1)

	assert.Equal(t, []string{
		"run/workbooks/wb-1_Sales.twbx",
		"run/workbooks/wb-2_Q3_Forecast.twbx",
		"run/prep_flows/fl-1_Cleanup.tflx",
		"run/published_data_sources/ds-1_Orders.tdsx",
	}, s3c.keys())

	assert.Equal(t, "content-wb-1", string(s3c.objects["run/workbooks/wb-1_Sales.twbx"]))
	assert.Equal(t, "s3://backup-bucket/run/workbooks/wb-1_Sales.twbx", res.Workbooks[0].S3URL)
	assert.Equal(t, "workbook", s3c.inputs[0].Metadata["resource-type"])
	assert.Equal(t, "wb-1", s3c.inputs[0].Metadata["resource-id"])
}

func TestRunContentBackupEnforcesLimits(t *testing.T) {
	site := &fakeSite{
		workbooks: []tableau.Workbook{
			{ID: "wb-1", Name: "A"},
			{ID: "wb-2", Name: "B"},
			{ID: "wb-3", Name: "C"},
		},
	}
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	res, err := RunContentBackup(context.Background(), site, w, "run/", Limits{Workbooks: 2, Datasources: 1, PrepFlows: 1})
	require.NoError(t, err)

	assert.Len(t, res.Workbooks, 2)
	assert.Len(t, s3c.inputs, 2)
}

func TestRunContentBackupSkipsFailedItems(t *testing.T) {
	site := &fakeSite{
		workbooks: []tableau.Workbook{
			{ID: "wb-1", Name: "A"},
			{ID: "wb-2", Name: "B"},
		},
		failDownloads: map[string]bool{"wb-1": true},
	}
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	res, err := RunContentBackup(context.Background(), site, w, "run/", Limits{Workbooks: 3, Datasources: 3, PrepFlows: 3})
	require.NoError(t, err)

	require.Len(t, res.Workbooks, 1)
	assert.Equal(t, "wb-2", res.Workbooks[0].ID)
}

func TestRunContentBackupAbortsOnListError(t *testing.T) {
	site := &fakeSite{listErr: errors.New("api down")}
	w := NewWriter(newFakeS3(), "backup-bucket")

	_, err := RunContentBackup(context.Background(), site, w, "run/", Limits{Workbooks: 1, Datasources: 1, PrepFlows: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
}
