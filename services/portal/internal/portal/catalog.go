package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/catalog"
	"github.com/appetiteclub/portal/internal/models"
)

// collectionOf picks one collection out of a client's catalog.
type collectionOf[T any] func(*catalog.Catalog) *catalog.Collection[T]

func (h *Handler) registerCatalogRoutes(r chi.Router) {
	mountCollection(h, r, "/services", func(c *catalog.Catalog) *catalog.Collection[models.Service] { return c.Services })
	mountCollection(h, r, "/offers", func(c *catalog.Catalog) *catalog.Collection[models.Offer] { return c.Offers })
	mountCollection(h, r, "/facilities", func(c *catalog.Catalog) *catalog.Collection[models.Facility] { return c.Facilities })
	mountCollection(h, r, "/gallery", func(c *catalog.Catalog) *catalog.Collection[models.GalleryImage] { return c.Gallery })
	mountCollection(h, r, "/restaurants", func(c *catalog.Catalog) *catalog.Collection[models.Restaurant] { return c.Restaurants })
	mountCollection(h, r, "/dishes", func(c *catalog.Catalog) *catalog.Collection[models.Dish] { return c.Dishes })
	mountCollection(h, r, "/payments", func(c *catalog.Catalog) *catalog.Collection[models.Payment] { return c.Payments })
	mountCollection(h, r, "/queries", func(c *catalog.Catalog) *catalog.Collection[models.Query] { return c.Queries.Collection })
	mountCollection(h, r, "/users", func(c *catalog.Catalog) *catalog.Collection[models.User] { return c.Users.Collection })

	r.Put("/users/{id}/role", h.SetUserRole)
	r.Get("/reports/{kind}", h.Report)
}

func mountCollection[T any](h *Handler, r chi.Router, path string, pick collectionOf[T]) {
	col := func(req *http.Request) *catalog.Collection[T] {
		return pick(clientFrom(req.Context()).catalog)
	}

	r.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			items, err := col(req).List(req.Context())
			h.reply(w, req, http.StatusOK, items, err)
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var item T
			if err := decode(req, &item); err != nil {
				h.fail(w, req, err)
				return
			}
			created, err := col(req).Create(req.Context(), item)
			h.reply(w, req, http.StatusCreated, created, err)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			item, err := col(req).Get(req.Context(), chi.URLParam(req, "id"))
			h.reply(w, req, http.StatusOK, item, err)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			var patch map[string]any
			if err := decode(req, &patch); err != nil {
				h.fail(w, req, err)
				return
			}
			updated, err := col(req).Update(req.Context(), chi.URLParam(req, "id"), patch)
			h.reply(w, req, http.StatusOK, updated, err)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			err := col(req).Delete(req.Context(), chi.URLParam(req, "id"))
			h.reply(w, req, http.StatusOK, nil, err)
		})
	})
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, status, data)
}

// publicList serves an anonymous read of a catalog collection.
func publicList[T any](h *Handler, pick collectionOf[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := pick(clientFrom(r.Context()).catalog).List(r.Context())
		h.reply(w, r, http.StatusOK, items, err)
	}
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.Service] { return c.Services })(w, r)
}

func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.Offer] { return c.Offers })(w, r)
}

func (h *Handler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.Facility] { return c.Facilities })(w, r)
}

func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.GalleryImage] { return c.Gallery })(w, r)
}

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.Restaurant] { return c.Restaurants })(w, r)
}

func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	publicList(h, func(c *catalog.Catalog) *catalog.Collection[models.Dish] { return c.Dishes })(w, r)
}

func (h *Handler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if err := decode(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := clientFrom(r.Context()).catalog.Queries.Submit(r.Context(), q)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	items, err := clientFrom(r.Context()).catalog.Queries.List(r.Context())
	h.reply(w, r, http.StatusOK, items, err)
}

type resolveRequest struct {
	Response string `json:"response"`
}

func (h *Handler) ResolveQuery(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c := clientFrom(r.Context())
	id := chi.URLParam(r, "id")
	resolved, err := c.catalog.Queries.Resolve(r.Context(), id, req.Response)
	h.audit.LogTransition(r.Context(), userID(c), "query/"+id, models.QueryOpen, models.QueryResolved, err)
	h.reply(w, r, http.StatusOK, resolved, err)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c := clientFrom(r.Context())
	id := chi.URLParam(r, "id")
	updated, err := c.catalog.Users.SetRole(r.Context(), id, req.Role)
	h.audit.LogTransition(r.Context(), userID(c), "user/"+id+"/role", "", req.Role, err)
	h.reply(w, r, http.StatusOK, publicUser(updated), err)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	kind, ok := catalog.ParseReportKind(chi.URLParam(r, "kind"))
	if !ok {
		h.fail(w, r, apperr.Validationf("unknown report %q", chi.URLParam(r, "kind")))
		return
	}
	rows, err := clientFrom(r.Context()).catalog.Reports.Fetch(r.Context(), kind)
	h.reply(w, r, http.StatusOK, rows, err)
}

func userID(c *client) string {
	if u := c.session.User(); u != nil {
		return u.ID
	}
	return ""
}
