package tableau

// PATCredentials is the JSON shape of the Secrets Manager secret holding the
// personal access token for the site.
type PATCredentials struct {
	PATName string `json:"PAT_NAME"`
	PAT     string `json:"PAT"`
	Site    string `json:"SITE"`
}

// Pagination carries the paging block the REST API returns on list calls.
// Values stay strings, matching the wire attributes.
type Pagination struct {
	PageNumber     string `xml:"pageNumber,attr" json:"pageNumber"`
	PageSize       string `xml:"pageSize,attr" json:"pageSize"`
	TotalAvailable string `xml:"totalAvailable,attr" json:"totalAvailable"`
}

// Ref is a bare id/name reference embedded in many resources.
type Ref struct {
	ID   string `xml:"id,attr" json:"id"`
	Name string `xml:"name,attr" json:"name,omitempty"`
}

// IDRef references a resource by id only.
type IDRef struct {
	ID string `xml:"id,attr" json:"id"`
}

type DomainRef struct {
	Name string `xml:"name,attr" json:"name"`
}

type Location struct {
	ID   string `xml:"id,attr" json:"id"`
	Type string `xml:"type,attr" json:"type"`
	Name string `xml:"name,attr" json:"name,omitempty"`
}

type Workbook struct {
	ID              string    `xml:"id,attr" json:"id"`
	Name            string    `xml:"name,attr" json:"name"`
	Description     string    `xml:"description,attr" json:"description"`
	ContentURL      string    `xml:"contentUrl,attr" json:"contentUrl"`
	WebpageURL      string    `xml:"webpageUrl,attr" json:"webpageUrl"`
	ShowTabs        string    `xml:"showTabs,attr" json:"showTabs"`
	Size            string    `xml:"size,attr" json:"size"`
	CreatedAt       string    `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt       string    `xml:"updatedAt,attr" json:"updatedAt"`
	EncryptExtracts string    `xml:"encryptExtracts,attr" json:"encryptExtracts"`
	DefaultViewID   string    `xml:"defaultViewId,attr" json:"defaultViewId"`
	Project         *Ref      `xml:"project" json:"project,omitempty"`
	Location        *Location `xml:"location" json:"location,omitempty"`
	Owner           *Ref      `xml:"owner" json:"owner,omitempty"`
	Tags            struct{}  `xml:"-" json:"tags"`

	DataAccelerationConfig struct{} `xml:"-" json:"dataAccelerationConfig"`
}

type Datasource struct {
	ID                  string   `xml:"id,attr" json:"id"`
	Name                string   `xml:"name,attr" json:"name"`
	ContentURL          string   `xml:"contentUrl,attr" json:"contentUrl"`
	CreatedAt           string   `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt           string   `xml:"updatedAt,attr" json:"updatedAt"`
	Size                string   `xml:"size,attr" json:"size"`
	Type                string   `xml:"type,attr" json:"type"`
	EncryptExtracts     string   `xml:"encryptExtracts,attr" json:"encryptExtracts"`
	HasExtracts         string   `xml:"hasExtracts,attr" json:"hasExtracts"`
	IsCertified         string   `xml:"isCertified,attr" json:"isCertified"`
	UseRemoteQueryAgent string   `xml:"useRemoteQueryAgent,attr" json:"useRemoteQueryAgent"`
	Description         string   `xml:"description" json:"description"`
	Project             *Ref     `xml:"project" json:"project,omitempty"`
	Owner               *Ref     `xml:"owner" json:"owner,omitempty"`
	Tags                struct{} `xml:"-" json:"tags"`
}

type Flow struct {
	ID          string   `xml:"id,attr" json:"id"`
	Name        string   `xml:"name,attr" json:"name"`
	Description string   `xml:"description,attr" json:"description"`
	WebpageURL  string   `xml:"webpageUrl,attr" json:"webpageUrl"`
	FileType    string   `xml:"fileType,attr" json:"fileType"`
	CreatedAt   string   `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt   string   `xml:"updatedAt,attr" json:"updatedAt"`
	Project     *Project `xml:"project" json:"project,omitempty"`
	Owner       *User    `xml:"owner" json:"owner,omitempty"`
	Tags        struct{} `xml:"-" json:"tags"`
	Parameters  struct{} `xml:"-" json:"parameters"`
}

type User struct {
	ID                 string    `xml:"id,attr" json:"id"`
	Name               string    `xml:"name,attr" json:"name"`
	FullName           string    `xml:"fullName,attr" json:"fullName,omitempty"`
	Email              string    `xml:"email,attr" json:"email,omitempty"`
	SiteRole           string    `xml:"siteRole,attr" json:"siteRole,omitempty"`
	LastLogin          string    `xml:"lastLogin,attr" json:"lastLogin,omitempty"`
	AuthSetting        string    `xml:"authSetting,attr" json:"authSetting,omitempty"`
	ExternalAuthUserID string    `xml:"externalAuthUserId,attr" json:"externalAuthUserId,omitempty"`
	Locale             string    `xml:"locale,attr" json:"locale,omitempty"`
	Language           string    `xml:"language,attr" json:"language,omitempty"`
	IdpConfigurationID string    `xml:"idpConfigurationId,attr" json:"idpConfigurationId,omitempty"`
	Domain             DomainRef `xml:"domain" json:"domain"`
}

// GroupMember is the trimmed user record returned by the group membership
// endpoint.
type GroupMember struct {
	ID   string `xml:"id,attr" json:"id"`
	Name string `xml:"name,attr" json:"name"`
}

type GroupImport struct {
	DomainName       string `xml:"domainName,attr" json:"domainName"`
	SiteRole         string `xml:"siteRole,attr" json:"siteRole"`
	GrantLicenseMode string `xml:"grantLicenseMode,attr" json:"grantLicenseMode"`
}

type Group struct {
	ID     string       `xml:"id,attr" json:"id"`
	Name   string       `xml:"name,attr" json:"name"`
	Domain DomainRef    `xml:"domain" json:"domain"`
	Import *GroupImport `xml:"import" json:"import,omitempty"`
	// Users is filled from the membership endpoint, not the group list call.
	Users []GroupMember `xml:"-" json:"users"`
}

type Project struct {
	ID                 string `xml:"id,attr" json:"id"`
	Name               string `xml:"name,attr" json:"name"`
	Description        string `xml:"description,attr" json:"description"`
	CreatedAt          string `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt          string `xml:"updatedAt,attr" json:"updatedAt"`
	ContentPermissions string `xml:"contentPermissions,attr" json:"contentPermissions"`
	ParentProjectID    string `xml:"parentProjectId,attr" json:"parentProjectId,omitempty"`
	Owner              IDRef  `xml:"owner" json:"owner"`
}

type Interval struct {
	Hours   string `xml:"hours,attr" json:"hours,omitempty"`
	WeekDay string `xml:"weekDay,attr" json:"weekDay,omitempty"`
}

type FrequencyDetails struct {
	Start     string `xml:"start,attr" json:"start"`
	End       string `xml:"end,attr" json:"end"`
	Intervals struct {
		Interval []Interval `xml:"interval" json:"interval"`
	} `xml:"intervals" json:"intervals"`
}

type Schedule struct {
	Frequency        string           `xml:"frequency,attr" json:"frequency"`
	NextRunAt        string           `xml:"nextRunAt,attr" json:"nextRunAt"`
	FrequencyDetails FrequencyDetails `xml:"frequencyDetails" json:"frequencyDetails"`
}

type SubscriptionContent struct {
	ID              string `xml:"id,attr" json:"id"`
	Type            string `xml:"type,attr" json:"type"`
	SendIfViewEmpty string `xml:"sendIfViewEmpty,attr" json:"sendIfViewEmpty"`
}

type Subscription struct {
	ID          string              `xml:"id,attr" json:"id"`
	Subject     string              `xml:"subject,attr" json:"subject"`
	Message     string              `xml:"message,attr" json:"message"`
	AttachImage string              `xml:"attachImage,attr" json:"attachImage"`
	AttachPdf   string              `xml:"attachPdf,attr" json:"attachPdf"`
	Suspended   string              `xml:"suspended,attr" json:"suspended"`
	Content     SubscriptionContent `xml:"content" json:"content"`
	Schedule    Schedule            `xml:"schedule" json:"schedule"`
	User        Ref                 `xml:"user" json:"user"`
}

type CustomView struct {
	ID             string `xml:"id,attr" json:"id"`
	Name           string `xml:"name,attr" json:"name"`
	CreatedAt      string `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt      string `xml:"updatedAt,attr" json:"updatedAt"`
	LastAccessedAt string `xml:"lastAccessedAt,attr" json:"lastAccessedAt"`
	Shared         string `xml:"shared,attr" json:"shared"`
	View           Ref    `xml:"view" json:"view"`
	Workbook       Ref    `xml:"workbook" json:"workbook"`
	Owner          Ref    `xml:"owner" json:"owner"`
}

type VirtualConnection struct {
	ID      string `xml:"id,attr" json:"id"`
	Name    string `xml:"name,attr" json:"name"`
	Project IDRef  `xml:"project" json:"project"`
	Owner   IDRef  `xml:"owner" json:"owner"`
	Content string `xml:"content" json:"content"`
}

type ExtractRefresh struct {
	ID                     string   `xml:"id,attr" json:"id"`
	Priority               string   `xml:"priority,attr" json:"priority"`
	ConsecutiveFailedCount string   `xml:"consecutiveFailedCount,attr" json:"consecutiveFailedCount"`
	Type                   string   `xml:"type,attr" json:"type"`
	Schedule               Schedule `xml:"schedule" json:"schedule"`
	Datasource             IDRef    `xml:"datasource" json:"datasource"`
}

// ExtractRefreshTask wraps one scheduled extract refresh the way the API
// nests it under <task>.
type ExtractRefreshTask struct {
	ExtractRefresh ExtractRefresh `xml:"extractRefresh" json:"extractRefresh"`
}

type FavoriteView struct {
	ID          string   `xml:"id,attr" json:"id"`
	Name        string   `xml:"name,attr" json:"name"`
	ContentURL  string   `xml:"contentUrl,attr" json:"contentUrl"`
	CreatedAt   string   `xml:"createdAt,attr" json:"createdAt"`
	UpdatedAt   string   `xml:"updatedAt,attr" json:"updatedAt"`
	ViewURLName string   `xml:"viewUrlName,attr" json:"viewUrlName"`
	Workbook    IDRef    `xml:"workbook" json:"workbook"`
	Owner       Ref      `xml:"owner" json:"owner"`
	Project     IDRef    `xml:"project" json:"project"`
	Location    Location `xml:"location" json:"location"`
	Tags        struct{} `xml:"-" json:"tags"`
}

type Favorite struct {
	Label    string        `xml:"label,attr" json:"label"`
	Position string        `xml:"position,attr" json:"position"`
	AddedAt  string        `xml:"addedAt,attr" json:"addedAt"`
	User     Ref           `xml:"-" json:"user"`
	View     *FavoriteView `xml:"view" json:"view,omitempty"`
}
