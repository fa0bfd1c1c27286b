package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/validation"
	"github.com/appetiteclub/portal/pkg/enums/role"
)

// Catalog groups every admin-managed resource behind one client.
type Catalog struct {
	Services    *Collection[models.Service]
	Offers      *Collection[models.Offer]
	Facilities  *Collection[models.Facility]
	Gallery     *Collection[models.GalleryImage]
	Payments    *Collection[models.Payment]
	Restaurants *Collection[models.Restaurant]
	Dishes      *Collection[models.Dish]
	Queries     *Queries
	Users       *Users
	Reports     *Reports
}

func New(client *apiclient.Client) *Catalog {
	v := validation.New()
	return &Catalog{
		Services:    NewCollection[models.Service](client, "services"),
		Offers:      NewCollection[models.Offer](client, "offers"),
		Facilities:  NewCollection[models.Facility](client, "facilities"),
		Gallery:     NewCollection[models.GalleryImage](client, "gallery"),
		Payments:    NewCollection[models.Payment](client, "payments"),
		Restaurants: NewCollection[models.Restaurant](client, "restaurants"),
		Dishes:      NewCollection[models.Dish](client, "dishes"),
		Queries:     &Queries{Collection: NewCollection[models.Query](client, "queries"), validate: v},
		Users:       &Users{Collection: NewCollection[models.User](client, "users")},
		Reports:     &Reports{client: client},
	}
}

// Queries is the contact inbox.
type Queries struct {
	*Collection[models.Query]
	validate *validator.Validate
}

// Submit validates a visitor's message and stores it as Open.
func (q *Queries) Submit(ctx context.Context, in models.Query) (*models.Query, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if msgs := validation.Check(q.validate, in); len(msgs) > 0 {
		return nil, apperr.New(apperr.Validation, strings.Join(msgs, "; "))
	}
	in.ID = ""
	in.Status = models.QueryOpen
	in.Response = ""
	return q.Create(ctx, in)
}

// Resolve answers a query and closes it.
func (q *Queries) Resolve(ctx context.Context, id, response string) (*models.Query, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperr.New(apperr.Validation, "response is required")
	}
	patch := map[string]string{
		"status":   models.QueryResolved,
		"response": response,
	}
	return q.Update(ctx, id, patch)
}

type Users struct {
	*Collection[models.User]
}

// SetRole changes a user's role to one of the known roles.
func (u *Users) SetRole(ctx context.Context, id, roleName string) (*models.User, error) {
	r := role.ByName(roleName)
	if r == nil {
		return nil, apperr.Validationf("unknown role %q", roleName)
	}
	return u.Update(ctx, id, map[string]string{"role": r.Name})
}

// ReportKind names a backend report.
type ReportKind string

const (
	ReportReservations ReportKind = "reservations"
	ReportQueries      ReportKind = "queries"
	ReportUserActivity ReportKind = "user-activity"
	ReportPayments     ReportKind = "payments"
)

var reportKinds = []ReportKind{ReportReservations, ReportQueries, ReportUserActivity, ReportPayments}

// ParseReportKind returns the report for name, or false.
func ParseReportKind(name string) (ReportKind, bool) {
	for _, k := range reportKinds {
		if string(k) == strings.ToLower(strings.TrimSpace(name)) {
			return k, true
		}
	}
	return "", false
}

type Reports struct {
	client *apiclient.Client
}

// Fetch returns the rows of a report. The row shape is owned by the backend.
func (r *Reports) Fetch(ctx context.Context, kind ReportKind) ([]models.ReportRow, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("report client not configured")
	}
	if _, ok := ParseReportKind(string(kind)); !ok {
		return nil, apperr.Validationf("unknown report %q", kind)
	}

	resp, err := r.client.List(ctx, "reports/"+string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s report: %w", kind, err)
	}

	var rows []models.ReportRow
	if err := apiclient.Decode(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
