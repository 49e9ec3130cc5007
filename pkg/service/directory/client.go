package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the Microsoft Graph endpoint
	DefaultBaseURL = "https://graph.microsoft.com"
	// DefaultLoginURL is the Microsoft identity platform endpoint
	DefaultLoginURL = "https://login.microsoftonline.com"

	graphScope = "https://graph.microsoft.com/.default"

	// maxPageSize is the largest $top Graph accepts for /users
	maxPageSize = 999

	userSelect = "id,givenName,surname,displayName,mail,userPrincipalName," +
		"department,jobTitle,officeLocation,employeeHireDate,accountEnabled"
	managerExpand = "manager($select=id,displayName)"
)

// client implements Service against Microsoft Graph
type client struct {
	httpClient *http.Client
	baseURL    string
}

var _ Service = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the Graph endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the OAuth2 client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a Graph directory client authenticated with the client
// credentials flow of the given tenant
func New(ctx context.Context, tenantID, clientID, clientSecret string, opts ...Option) (Service, error) {
	c := &client{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		if tenantID == "" || clientID == "" || clientSecret == "" {
			return nil, goerr.New("tenant ID, client ID and client secret are required")
		}
		cfg := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", DefaultLoginURL, url.PathEscape(tenantID)),
			Scopes:       []string{graphScope},
		}
		c.httpClient = cfg.Client(ctx)
	}

	return c, nil
}

// graphUser is the subset of the Graph user resource we read
type graphUser struct {
	ID                string        `json:"id"`
	GivenName         string        `json:"givenName"`
	Surname           string        `json:"surname"`
	DisplayName       string        `json:"displayName"`
	Mail              string        `json:"mail"`
	UserPrincipalName string        `json:"userPrincipalName"`
	Department        string        `json:"department"`
	JobTitle          string        `json:"jobTitle"`
	OfficeLocation    string        `json:"officeLocation"`
	EmployeeHireDate  *time.Time    `json:"employeeHireDate"`
	AccountEnabled    *bool         `json:"accountEnabled"`
	Manager           *graphManager `json:"manager"`
}

type graphManager struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type graphUserList struct {
	Value    []graphUser `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

func (u *graphUser) toEmployee() *model.Employee {
	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}
	active := true
	if u.AccountEnabled != nil {
		active = *u.AccountEnabled
	}

	e := &model.Employee{
		ID:         model.EmployeeID(u.ID),
		FirstName:  strings.TrimSpace(u.GivenName),
		LastName:   strings.TrimSpace(u.Surname),
		FullName:   strings.TrimSpace(u.DisplayName),
		Email:      strings.TrimSpace(email),
		Department: strings.TrimSpace(u.Department),
		JobTitle:   strings.TrimSpace(u.JobTitle),
		Location:   strings.TrimSpace(u.OfficeLocation),
		IsActive:   active,
		Source:     types.EmployeeSourceDirectory,
	}
	if u.EmployeeHireDate != nil && !u.EmployeeHireDate.IsZero() {
		hired := u.EmployeeHireDate.UTC()
		e.HireDate = &hired
	}
	if u.Manager != nil {
		e.ReportsTo = strings.TrimSpace(u.Manager.DisplayName)
	}
	return e
}

func (c *client) ListActiveEmployees(ctx context.Context, pageSize int, pageToken string) (*Page, error) {
	var reqURL string
	if pageToken != "" {
		// Only follow continuation links that point back at the configured endpoint
		if !strings.HasPrefix(pageToken, c.baseURL+"/") {
			return nil, goerr.Wrap(ErrFetchFailed, "page token does not belong to the directory endpoint")
		}
		reqURL = pageToken
	} else {
		if pageSize <= 0 || pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		q := url.Values{}
		q.Set("$filter", "accountEnabled eq true")
		q.Set("$select", userSelect)
		q.Set("$expand", managerExpand)
		q.Set("$top", strconv.Itoa(pageSize))
		reqURL = c.baseURL + "/v1.0/users?" + q.Encode()
	}

	var list graphUserList
	if err := c.get(ctx, reqURL, &list); err != nil {
		return nil, err
	}

	page := &Page{
		Employees:     make([]*model.Employee, 0, len(list.Value)),
		NextPageToken: list.NextLink,
	}
	for i := range list.Value {
		page.Employees = append(page.Employees, list.Value[i].toEmployee())
	}
	return page, nil
}

func (c *client) GetByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	q := url.Values{}
	q.Set("$select", userSelect)
	q.Set("$expand", managerExpand)
	reqURL := c.baseURL + "/v1.0/users/" + url.PathEscape(string(id)) + "?" + q.Encode()

	var user graphUser
	if err := c.get(ctx, reqURL, &user); err != nil {
		return nil, goerr.Wrap(err, "failed to get directory user", goerr.V("id", id))
	}
	return user.toEmployee(), nil
}

func (c *client) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, goerr.Wrap(ErrEmployeeNotFound, "email is empty")
	}

	quoted := "'" + strings.ReplaceAll(email, "'", "''") + "'"
	q := url.Values{}
	q.Set("$filter", "mail eq "+quoted+" or userPrincipalName eq "+quoted)
	q.Set("$select", userSelect)
	q.Set("$expand", managerExpand)
	q.Set("$top", "1")

	var list graphUserList
	if err := c.get(ctx, c.baseURL+"/v1.0/users?"+q.Encode(), &list); err != nil {
		return nil, goerr.Wrap(err, "failed to search directory user", goerr.V("email", email))
	}
	if len(list.Value) == 0 {
		return nil, goerr.Wrap(ErrEmployeeNotFound, "no directory user with email", goerr.V("email", email))
	}
	return list.Value[0].toEmployee(), nil
}

func (c *client) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return goerr.Wrap(ErrFetchFailed, "failed to build directory request", goerr.V("error", err.Error()))
	}
	req.Header.Set("Accept", "application/json")
	// Required by Graph for $filter on directory objects with "or"
	req.Header.Set("ConsistencyLevel", "eventual")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(ErrFetchFailed, "directory request failed", goerr.V("error", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return goerr.Wrap(ErrEmployeeNotFound, "directory returned not found")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.Wrap(ErrFetchFailed, "directory returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(ErrFetchFailed, "failed to decode directory response", goerr.V("error", err.Error()))
	}
	return nil
}
