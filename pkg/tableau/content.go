package tableau

import (
	"context"
	"encoding/xml"
	"io"
	"log"

	"github.com/pkg/errors"
)

// ListWorkbooks returns every workbook on the site. The pagination block of
// the first page is returned alongside for archival output.
func (c *Client) ListWorkbooks(ctx context.Context) ([]Workbook, Pagination, error) {
	var out []Workbook
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("workbooks"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name   `xml:"tsResponse"`
			Pagination Pagination `xml:"pagination"`
			Workbooks  []Workbook `xml:"workbooks>workbook"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse workbooks response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Workbooks...)
		return len(parsed.Workbooks), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Workbooks processed successfully", len(out))
	return out, pg, nil
}

// ListDatasources returns every published data source on the site.
func (c *Client) ListDatasources(ctx context.Context) ([]Datasource, Pagination, error) {
	var out []Datasource
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("datasources"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName     xml.Name     `xml:"tsResponse"`
			Pagination  Pagination   `xml:"pagination"`
			Datasources []Datasource `xml:"datasources>datasource"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse datasources response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Datasources...)
		return len(parsed.Datasources), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Data Sources processed successfully", len(out))
	return out, pg, nil
}

// ListFlows returns every prep flow on the site.
func (c *Client) ListFlows(ctx context.Context) ([]Flow, Pagination, error) {
	var out []Flow
	var pg Pagination

	err := c.listPages(ctx, c.siteURL("flows"), func(body []byte) (int, int, error) {
		var parsed struct {
			XMLName    xml.Name   `xml:"tsResponse"`
			Pagination Pagination `xml:"pagination"`
			Flows      []Flow     `xml:"flows>flow"`
		}
		if err := xml.Unmarshal(body, &parsed); err != nil {
			return 0, 0, errors.Wrap(err, "parse flows response")
		}
		if pg.PageNumber == "" {
			pg = parsed.Pagination
		}
		out = append(out, parsed.Flows...)
		return len(parsed.Flows), parseTotal(parsed.Pagination), nil
	})
	if err != nil {
		return nil, pg, err
	}

	log.Printf("%d Prep Flows processed successfully", len(out))
	return out, pg, nil
}

// DownloadWorkbook streams the packaged workbook (.twbx) content.
func (c *Client) DownloadWorkbook(ctx context.Context, id string) (io.ReadCloser, error) {
	return c.download(ctx, c.siteURL("workbooks/"+id+"/content"))
}

// DownloadDatasource streams the packaged data source (.tdsx) content.
func (c *Client) DownloadDatasource(ctx context.Context, id string) (io.ReadCloser, error) {
	return c.download(ctx, c.siteURL("datasources/"+id+"/content"))
}

// DownloadFlow streams the packaged prep flow (.tflx) content.
func (c *Client) DownloadFlow(ctx context.Context, id string) (io.ReadCloser, error) {
	return c.download(ctx, c.siteURL("flows/"+id+"/content"))
}
