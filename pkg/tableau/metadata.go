package tableau

import (
	"context"
	"encoding/xml"
	"log"

	"github.com/pkg/errors"
)

// ListUsers returns every user on the site.
func (c *Client) ListUsers(ctx context.Context) ([]User, Pagination, error) {
	var out []User
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("users"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name   `xml:"tsResponse"`
			Pagination Pagination `xml:"pagination"`
			Users      []User     `xml:"users>user"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse users response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Users...)
		return len(parsed.Users), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Users processed successfully", len(out))
	return out, pg, nil
}

// ListGroups returns every group on the site. Membership is not populated
// here; use ListGroupUsers per group.
func (c *Client) ListGroups(ctx context.Context) ([]Group, Pagination, error) {
	var out []Group
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("groups"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name   `xml:"tsResponse"`
			Pagination Pagination `xml:"pagination"`
			Groups     []Group    `xml:"groups>group"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse groups response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Groups...)
		return len(parsed.Groups), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Groups processed successfully", len(out))
	return out, pg, nil
}

// ListGroupUsers returns the members of one group.
func (c *Client) ListGroupUsers(ctx context.Context, groupID string) ([]GroupMember, error) {
	var out []GroupMember

	err := c.listPages(ctx, c.siteURL("groups/"+groupID+"/users"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name      `xml:"tsResponse"`
			Pagination Pagination    `xml:"pagination"`
			Users      []GroupMember `xml:"users>user"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse group users response")
		}
		out = append(out, parsed.Users...)
		return len(parsed.Users), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("%d Users in Group %s processed successfully", len(out), groupID)
	return out, nil
}

// ListProjects returns every project on the site.
func (c *Client) ListProjects(ctx context.Context) ([]Project, Pagination, error) {
	var out []Project
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("projects"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name   `xml:"tsResponse"`
			Pagination Pagination `xml:"pagination"`
			Projects   []Project  `xml:"projects>project"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse projects response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Projects...)
		return len(parsed.Projects), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Projects processed successfully", len(out))
	return out, pg, nil
}

// ListSubscriptions returns every subscription on the site.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, Pagination, error) {
	var out []Subscription
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("subscriptions"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName       xml.Name       `xml:"tsResponse"`
			Pagination    Pagination     `xml:"pagination"`
			Subscriptions []Subscription `xml:"subscriptions>subscription"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse subscriptions response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Subscriptions...)
		return len(parsed.Subscriptions), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Subscriptions processed successfully", len(out))
	return out, pg, nil
}

// ListCustomViews returns every custom view on the site.
func (c *Client) ListCustomViews(ctx context.Context) ([]CustomView, Pagination, error) {
	var out []CustomView
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("customviews"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName     xml.Name     `xml:"tsResponse"`
			Pagination  Pagination   `xml:"pagination"`
			CustomViews []CustomView `xml:"customViews>customView"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse custom views response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.CustomViews...)
		return len(parsed.CustomViews), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Custom Views processed successfully", len(out))
	return out, pg, nil
}

// ListVirtualConnections returns every virtual connection, with the per
// connection detail call merged in so the archived record carries the
// connection content.
func (c *Client) ListVirtualConnections(ctx context.Context) ([]VirtualConnection, error) {
	var refs []VirtualConnection

	err := c.listPages(ctx, c.siteURL("virtualconnections"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName     xml.Name            `xml:"tsResponse"`
			Pagination  Pagination          `xml:"pagination"`
			Connections []VirtualConnection `xml:"virtualConnections>virtualConnection"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse virtual connections response")
		}
		refs = append(refs, parsed.Connections...)
		return len(parsed.Connections), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]VirtualConnection, 0, len(refs))
	for _, ref := range refs {
		detail, err := c.GetVirtualConnection(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		detail.ID = ref.ID
		detail.Name = ref.Name
		out = append(out, *detail)
		log.Printf("Saved Virtual Connection: %s (ID: %s)", ref.Name, ref.ID)
	}

	log.Printf("%d Virtual Connections processed successfully", len(out))
	return out, nil
}

// GetVirtualConnection fetches the detail record for one virtual connection.
func (c *Client) GetVirtualConnection(ctx context.Context, id string) (*VirtualConnection, error) {
	body, err := c.get(ctx, c.siteURL("virtualconnections/"+id), nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		XMLName    xml.Name          `xml:"tsResponse"`
		Connection VirtualConnection `xml:"virtualConnection"`
	}
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "parse virtual connection detail")
	}

	return &parsed.Connection, nil
}

// ListExtractRefreshTasks returns the scheduled extract refreshes. The
// endpoint is not paged.
func (c *Client) ListExtractRefreshTasks(ctx context.Context) ([]ExtractRefreshTask, error) {
	body, err := c.get(ctx, c.siteURL("tasks/extractRefreshes"), nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		XMLName xml.Name             `xml:"tsResponse"`
		Tasks   []ExtractRefreshTask `xml:"tasks>task"`
	}
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "parse extract refresh tasks response")
	}

	// Tasks other than extract refreshes come back as empty wrappers.
	var out []ExtractRefreshTask
	for _, t := range parsed.Tasks {
		if t.ExtractRefresh.ID != "" {
			out = append(out, t)
		}
	}

	log.Printf("%d Extract Refresh Tasks processed successfully", len(out))
	return out, nil
}

// ListFavorites returns one user's favorites, stamped with the owning user.
func (c *Client) ListFavorites(ctx context.Context, user Ref) ([]Favorite, error) {
	body, err := c.get(ctx, c.siteURL("favorites/"+user.ID), nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		XMLName   xml.Name   `xml:"tsResponse"`
		Favorites []Favorite `xml:"favorites>favorite"`
	}
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "parse favorites response")
	}

	// Only view favorites are archived, matching the backup document shape.
	var out []Favorite
	for _, f := range parsed.Favorites {
		if f.View == nil {
			continue
		}
		f.User = user
		out = append(out, f)
	}

	return out, nil
}
