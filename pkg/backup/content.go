package backup

import (
	"context"
	"io"
	"log"
	"time"

	"tableaubackup/pkg/tableau"
	"tableaubackup/pkg/utils"
)

const (
	folderPrefix = "backup_tableau_cloud_pablosite_"

	maxNameLen = 200
)

// Folder builds the timestamped root folder for one backup run.
func Folder(now time.Time) string {
	return folderPrefix + now.Format("20060102_150405") + "/"
}

// Limits caps how many objects of each content type a run downloads.
type Limits struct {
	Workbooks   int
	Datasources int
	PrepFlows   int
}

// Item records one uploaded object.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	S3URL string `json:"s3_url"`
}

// ContentResult is the inventory of one content backup pass.
type ContentResult struct {
	Folder      string
	Workbooks   []Item
	PrepFlows   []Item
	Datasources []Item
}

// ContentAPI is the slice of the Tableau client the content backup needs.
type ContentAPI interface {
	ListWorkbooks(ctx context.Context) ([]tableau.Workbook, tableau.Pagination, error)
	ListFlows(ctx context.Context) ([]tableau.Flow, tableau.Pagination, error)
	ListDatasources(ctx context.Context) ([]tableau.Datasource, tableau.Pagination, error)
	DownloadWorkbook(ctx context.Context, id string) (io.ReadCloser, error)
	DownloadFlow(ctx context.Context, id string) (io.ReadCloser, error)
	DownloadDatasource(ctx context.Context, id string) (io.ReadCloser, error)
}

// RunContentBackup downloads workbooks, prep flows and published data sources
// up to the configured limits and lands them under the run folder. A failure
// on a single item is logged and skipped; a failed list call aborts the run.
func RunContentBackup(ctx context.Context, api ContentAPI, w *Writer, folder string, limits Limits) (*ContentResult, error) {
	res := &ContentResult{Folder: folder}

	workbooks, _, err := api.ListWorkbooks(ctx)
	if err != nil {
		return nil, err
	}
	for _, wb := range workbooks {
		if len(res.Workbooks) >= limits.Workbooks {
			log.Printf("Limit reached: %d workbooks processed, stopping", limits.Workbooks)
			break
		}

		key := folder + "workbooks/" + objectName(wb.ID, wb.Name, ".twbx")
		s3URL, err := copyContent(ctx, w, key, wb.ID, "workbook", func() (io.ReadCloser, error) {
			return api.DownloadWorkbook(ctx, wb.ID)
		})
		if err != nil {
			log.Printf("Error processing workbook %s: %v", wb.Name, err)
			continue
		}
		res.Workbooks = append(res.Workbooks, Item{ID: wb.ID, Name: wb.Name, S3URL: s3URL})
	}

	flows, _, err := api.ListFlows(ctx)
	if err != nil {
		return nil, err
	}
	for _, fl := range flows {
		if len(res.PrepFlows) >= limits.PrepFlows {
			log.Printf("Limit reached: %d prep flows processed, stopping", limits.PrepFlows)
			break
		}

		key := folder + "prep_flows/" + objectName(fl.ID, fl.Name, ".tflx")
		s3URL, err := copyContent(ctx, w, key, fl.ID, "flow", func() (io.ReadCloser, error) {
			return api.DownloadFlow(ctx, fl.ID)
		})
		if err != nil {
			log.Printf("Error processing prep flow %s: %v", fl.Name, err)
			continue
		}
		res.PrepFlows = append(res.PrepFlows, Item{ID: fl.ID, Name: fl.Name, S3URL: s3URL})
	}

	datasources, _, err := api.ListDatasources(ctx)
	if err != nil {
		return nil, err
	}
	for _, ds := range datasources {
		if len(res.Datasources) >= limits.Datasources {
			log.Printf("Limit reached: %d data sources processed, stopping", limits.Datasources)
			break
		}

		key := folder + "published_data_sources/" + objectName(ds.ID, ds.Name, ".tdsx")
		s3URL, err := copyContent(ctx, w, key, ds.ID, "datasource", func() (io.ReadCloser, error) {
			return api.DownloadDatasource(ctx, ds.ID)
		})
		if err != nil {
			log.Printf("Error processing data source %s: %v", ds.Name, err)
			continue
		}
		res.Datasources = append(res.Datasources, Item{ID: ds.ID, Name: ds.Name, S3URL: s3URL})
	}

	return res, nil
}

func objectName(id, name, ext string) string {
	return id + "_" + utils.Truncate(utils.SanitizeName(name), maxNameLen) + ext
}

func copyContent(ctx context.Context, w *Writer, key, id, resourceType string, open func() (io.ReadCloser, error)) (string, error) {
	body, err := open()
	if err != nil {
		return "", err
	}
	defer body.Close()

	return w.Upload(ctx, key, "application/octet-stream", body, map[string]string{
		"resource-type": resourceType,
		"resource-id":   id,
	})
}
