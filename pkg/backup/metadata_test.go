package backup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableaubackup/pkg/tableau"
)

func metadataSite() *fakeSite {
	return &fakeSite{
		users: []tableau.User{
			{ID: "u-1", Name: "ada", SiteRole: "Creator"},
			{ID: "u-2", Name: "grace", SiteRole: "Viewer"},
		},
		groups: []tableau.Group{
			{ID: "g-1", Name: "Analysts"},
		},
		groupMembers: map[string][]tableau.GroupMember{
			"g-1": {{ID: "u-1", Name: "ada"}},
		},
		projects: []tableau.Project{
			{ID: "p-1", Name: "Default"},
		},
		workbooks: []tableau.Workbook{
			{ID: "wb-1", Name: "Sales"},
		},
		datasources: []tableau.Datasource{
			{ID: "ds-1", Name: "Orders"},
		},
		flows: []tableau.Flow{
			{ID: "fl-1", Name: "Cleanup"},
		},
		favorites: map[string][]tableau.Favorite{
			"u-1": {{Label: "Overview", View: &tableau.FavoriteView{ID: "v-1"}}},
		},
		subscriptions: []tableau.Subscription{
			{ID: "s-1", Subject: "Weekly sales"},
		},
		customViews: []tableau.CustomView{
			{ID: "cv-1", Name: "My View"},
		},
		tasks: []tableau.ExtractRefreshTask{
			{ExtractRefresh: tableau.ExtractRefresh{ID: "t-1"}},
		},
		connections: []tableau.VirtualConnection{
			{ID: "vc-1", Name: "warehouse"},
		},
	}
}

func TestRunMetadataBackupWritesAllDocuments(t *testing.T) {
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	res, err := RunMetadataBackup(context.Background(), metadataSite(), w, "run/")
	require.NoError(t, err)

	wantKeys := []string{
		"run/metadata_tableau/users_roles.json",
		"run/metadata_tableau/groups.json",
		"run/metadata_tableau/projects.json",
		"run/metadata_tableau/workbooks.json",
		"run/metadata_tableau/datasources.json",
		"run/metadata_tableau/flows.json",
		"run/metadata_tableau/favorites.json",
		"run/metadata_tableau/subscriptions.json",
		"run/metadata_tableau/custom_views.json",
		"run/metadata_tableau/extract_tasks.json",
		"run/metadata_tableau/virtual_connections.json",
	}
	assert.Equal(t, wantKeys, s3c.keys())

	require.Len(t, res.Documents, len(wantKeys))
	assert.Equal(t, "users_roles.json", res.Documents[0].Name)
	assert.Equal(t, 2, res.Documents[0].Count)
	assert.Equal(t, "s3://backup-bucket/run/metadata_tableau/users_roles.json", res.Documents[0].S3URL)
}

func TestRunMetadataBackupUsersEnvelope(t *testing.T) {
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), metadataSite(), w, "run/")
	require.NoError(t, err)

	var doc struct {
		Pagination struct {
			PageNumber string `json:"pageNumber"`
		} `json:"pagination"`
		Users struct {
			User []struct {
				ID       string `json:"id"`
				SiteRole string `json:"siteRole"`
			} `json:"user"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(s3c.objects["run/metadata_tableau/users_roles.json"], &doc))
	assert.Equal(t, "1", doc.Pagination.PageNumber)
	require.Len(t, doc.Users.User, 2)
	assert.Equal(t, "Creator", doc.Users.User[0].SiteRole)
}

func TestRunMetadataBackupFillsGroupMembership(t *testing.T) {
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), metadataSite(), w, "run/")
	require.NoError(t, err)

	var doc struct {
		Groups struct {
			Group []struct {
				Name  string `json:"name"`
				Users []struct {
					Name string `json:"name"`
				} `json:"users"`
			} `json:"group"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(s3c.objects["run/metadata_tableau/groups.json"], &doc))
	require.Len(t, doc.Groups.Group, 1)
	require.Len(t, doc.Groups.Group[0].Users, 1)
	assert.Equal(t, "ada", doc.Groups.Group[0].Users[0].Name)
}

func TestRunMetadataBackupGathersFavoritesAcrossUsers(t *testing.T) {
	site := metadataSite()
	site.favorites["u-2"] = []tableau.Favorite{
		{Label: "Forecast", View: &tableau.FavoriteView{ID: "v-2"}},
	}
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), site, w, "run/")
	require.NoError(t, err)

	var doc struct {
		Favorites struct {
			Favorite []struct {
				Label string `json:"label"`
				User  struct {
					Name string `json:"name"`
				} `json:"user"`
			} `json:"favorite"`
		} `json:"favorites"`
	}
	require.NoError(t, json.Unmarshal(s3c.objects["run/metadata_tableau/favorites.json"], &doc))
	require.Len(t, doc.Favorites.Favorite, 2)
	assert.Equal(t, "ada", doc.Favorites.Favorite[0].User.Name)
	assert.Equal(t, "grace", doc.Favorites.Favorite[1].User.Name)
}

func TestRunMetadataBackupBareListsStayBare(t *testing.T) {
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), metadataSite(), w, "run/")
	require.NoError(t, err)

	// Workbooks and friends are archived as bare arrays, not envelopes.
	var workbooks []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(s3c.objects["run/metadata_tableau/workbooks.json"], &workbooks))
	require.Len(t, workbooks, 1)
	assert.Equal(t, "wb-1", workbooks[0].ID)

	var tasksDoc struct {
		Tasks struct {
			Task []struct {
				ExtractRefresh struct {
					ID string `json:"id"`
				} `json:"extractRefresh"`
			} `json:"task"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(s3c.objects["run/metadata_tableau/extract_tasks.json"], &tasksDoc))
	require.Len(t, tasksDoc.Tasks.Task, 1)
	assert.Equal(t, "t-1", tasksDoc.Tasks.Task[0].ExtractRefresh.ID)

	assert.Contains(t, string(s3c.objects["run/metadata_tableau/workbooks.json"]), `"dataAccelerationConfig": {}`)
}

func TestRunMetadataBackupEmptySiteWritesEmptyCollections(t *testing.T) {
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), &fakeSite{}, w, "run/")
	require.NoError(t, err)

	// A site with nothing of a type archives [] for it, never null.
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/workbooks.json"]))
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/datasources.json"]))
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/flows.json"]))
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/subscriptions.json"]))
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/custom_views.json"]))
	assert.Equal(t, "[]", string(s3c.objects["run/metadata_tableau/virtual_connections.json"]))

	assert.Contains(t, string(s3c.objects["run/metadata_tableau/users_roles.json"]), `"user": []`)
	assert.Contains(t, string(s3c.objects["run/metadata_tableau/groups.json"]), `"group": []`)
	assert.Contains(t, string(s3c.objects["run/metadata_tableau/projects.json"]), `"project": []`)
	assert.Contains(t, string(s3c.objects["run/metadata_tableau/favorites.json"]), `"favorite": []`)
	assert.Contains(t, string(s3c.objects["run/metadata_tableau/extract_tasks.json"]), `"task": []`)
}

func TestRunMetadataBackupGroupWithoutMembers(t *testing.T) {
	site := &fakeSite{
		groups: []tableau.Group{{ID: "g-1", Name: "Analysts"}},
	}
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), site, w, "run/")
	require.NoError(t, err)

	assert.Contains(t, string(s3c.objects["run/metadata_tableau/groups.json"]), `"users": []`)
}

func TestRunMetadataBackupAbortsOnListError(t *testing.T) {
	site := metadataSite()
	site.listErr = errors.New("api down")
	s3c := newFakeS3()
	w := NewWriter(s3c, "backup-bucket")

	_, err := RunMetadataBackup(context.Background(), site, w, "run/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")

	// Documents before the failing call landed; nothing after it did.
	assert.Equal(t, []string{
		"run/metadata_tableau/users_roles.json",
		"run/metadata_tableau/groups.json",
		"run/metadata_tableau/projects.json",
	}, s3c.keys())
}
