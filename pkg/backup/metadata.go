package backup

import (
	"context"
	"log"

	"tableaubackup/pkg/tableau"
)

const metadataSubfolder = "metadata_tableau/"

// Document records one archived metadata JSON object.
type Document struct {
	Name  string
	Count int
	S3URL string
}

// MetadataResult is the inventory of one metadata backup pass.
type MetadataResult struct {
	Documents []Document
}

// MetadataAPI is the slice of the Tableau client the metadata backup needs.
type MetadataAPI interface {
	ListUsers(ctx context.Context) ([]tableau.User, tableau.Pagination, error)
	ListGroups(ctx context.Context) ([]tableau.Group, tableau.Pagination, error)
	ListGroupUsers(ctx context.Context, groupID string) ([]tableau.GroupMember, error)
	ListProjects(ctx context.Context) ([]tableau.Project, tableau.Pagination, error)
	ListWorkbooks(ctx context.Context) ([]tableau.Workbook, tableau.Pagination, error)
	ListDatasources(ctx context.Context) ([]tableau.Datasource, tableau.Pagination, error)
	ListFlows(ctx context.Context) ([]tableau.Flow, tableau.Pagination, error)
	ListFavorites(ctx context.Context, user tableau.Ref) ([]tableau.Favorite, error)
	ListSubscriptions(ctx context.Context) ([]tableau.Subscription, tableau.Pagination, error)
	ListCustomViews(ctx context.Context) ([]tableau.CustomView, tableau.Pagination, error)
	ListExtractRefreshTasks(ctx context.Context) ([]tableau.ExtractRefreshTask, error)
	ListVirtualConnections(ctx context.Context) ([]tableau.VirtualConnection, error)
}

// Wrapper documents mirror the REST API envelope so the archive can be
// cross-read with vendor documentation.

type usersDocument struct {
	Pagination tableau.Pagination `json:"pagination"`
	Users      struct {
		User []tableau.User `json:"user"`
	} `json:"users"`
}

type groupsDocument struct {
	Pagination tableau.Pagination `json:"pagination"`
	Groups     struct {
		Group []tableau.Group `json:"group"`
	} `json:"groups"`
}

type projectsDocument struct {
	Pagination tableau.Pagination `json:"pagination"`
	Projects   struct {
		Project []tableau.Project `json:"project"`
	} `json:"projects"`
}

type favoritesDocument struct {
	Favorites struct {
		Favorite []tableau.Favorite `json:"favorite"`
	} `json:"favorites"`
}

type tasksDocument struct {
	Tasks struct {
		Task []tableau.ExtractRefreshTask `json:"task"`
	} `json:"tasks"`
}

// RunMetadataBackup archives site metadata as JSON documents under
// <folder>metadata_tableau/. Unlike the content pass, any API failure here
// aborts the run: a partial metadata snapshot is worse than a missing one.
func RunMetadataBackup(ctx context.Context, api MetadataAPI, w *Writer, folder string) (*MetadataResult, error) {
	metaFolder := folder + metadataSubfolder
	res := &MetadataResult{}

	store := func(name string, count int, doc interface{}) error {
		s3URL, err := w.UploadJSON(ctx, metaFolder+name, doc, map[string]string{
			"resource-type": "metadata",
		})
		if err != nil {
			return err
		}
		res.Documents = append(res.Documents, Document{Name: name, Count: count, S3URL: s3URL})
		return nil
	}

	users, usersPg, err := api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	usersDoc := usersDocument{Pagination: usersPg}
	usersDoc.Users.User = emptyIfNil(users)
	if err := store("users_roles.json", len(users), usersDoc); err != nil {
		return nil, err
	}

	groups, groupsPg, err := api.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		members, err := api.ListGroupUsers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Users = emptyIfNil(members)
	}
	groupsDoc := groupsDocument{Pagination: groupsPg}
	groupsDoc.Groups.Group = emptyIfNil(groups)
	if err := store("groups.json", len(groups), groupsDoc); err != nil {
		return nil, err
	}

	projects, projectsPg, err := api.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	projectsDoc := projectsDocument{Pagination: projectsPg}
	projectsDoc.Projects.Project = emptyIfNil(projects)
	if err := store("projects.json", len(projects), projectsDoc); err != nil {
		return nil, err
	}

	workbooks, _, err := api.ListWorkbooks(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("workbooks.json", len(workbooks), emptyIfNil(workbooks)); err != nil {
		return nil, err
	}

	datasources, _, err := api.ListDatasources(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("datasources.json", len(datasources), emptyIfNil(datasources)); err != nil {
		return nil, err
	}

	flows, _, err := api.ListFlows(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("flows.json", len(flows), emptyIfNil(flows)); err != nil {
		return nil, err
	}

	favoritesDoc := favoritesDocument{}
	favoritesDoc.Favorites.Favorite = []tableau.Favorite{}
	for _, u := range users {
		favs, err := api.ListFavorites(ctx, tableau.Ref{ID: u.ID, Name: u.Name})
		if err != nil {
			return nil, err
		}
		favoritesDoc.Favorites.Favorite = append(favoritesDoc.Favorites.Favorite, favs...)
	}
	if err := store("favorites.json", len(favoritesDoc.Favorites.Favorite), favoritesDoc); err != nil {
		return nil, err
	}

	subscriptions, _, err := api.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("subscriptions.json", len(subscriptions), emptyIfNil(subscriptions)); err != nil {
		return nil, err
	}

	customViews, _, err := api.ListCustomViews(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("custom_views.json", len(customViews), emptyIfNil(customViews)); err != nil {
		return nil, err
	}

	tasks, err := api.ListExtractRefreshTasks(ctx)
	if err != nil {
		return nil, err
	}
	tasksDoc := tasksDocument{}
	tasksDoc.Tasks.Task = emptyIfNil(tasks)
	if err := store("extract_tasks.json", len(tasks), tasksDoc); err != nil {
		return nil, err
	}

	connections, err := api.ListVirtualConnections(ctx)
	if err != nil {
		return nil, err
	}
	if err := store("virtual_connections.json", len(connections), emptyIfNil(connections)); err != nil {
		return nil, err
	}

	log.Printf("Metadata backup stored %d documents under %s", len(res.Documents), metaFolder)
	return res, nil
}

// emptyIfNil keeps empty collections archived as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
