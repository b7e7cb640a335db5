package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/middleware"
	"github.com/iliyamo/poker-club/internal/model"
)

// crud lists the handlers of one admin resource.  Patch may be nil.
type crud struct {
	List, Get, Create, Update, Patch, Delete echo.HandlerFunc
}

// mount registers a resource.  Writes accept the id in the path and, for
// older clients, in the body (PUT, PATCH) or the query string (DELETE).
func mount(g *echo.Group, path string, r crud) {
	g.GET(path, r.List)
	g.GET(path+"/:id", r.Get)
	g.POST(path, r.Create)
	g.PUT(path, r.Update)
	g.PUT(path+"/:id", r.Update)
	if r.Patch != nil {
		g.PATCH(path, r.Patch)
		g.PATCH(path+"/:id", r.Patch)
	}
	g.DELETE(path, r.Delete)
	g.DELETE(path+"/:id", r.Delete)
}

// RegisterAdmin registers the back office API under /api/admin.  All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, o Options) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(o.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Tournaments ----
	t := h.Tournaments
	mount(g, "/tournaments", crud{t.List, t.Get, t.Create, t.Update, t.Patch, t.Delete})
	g.POST("/tournaments/:id/duplicate", t.Duplicate)
	g.POST("/tournaments/:id/toggle-status", t.ToggleStatus)

	// ---- Structures ----
	s := h.Structures
	mount(g, "/structures", crud{List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete})

	// ---- Cash games ----
	cg := h.CashGames
	mount(g, "/cash-games", crud{cg.List, cg.Get, cg.Create, cg.Update, cg.Patch, cg.Delete})
	g.POST("/cash-games/:id/toggle-active", cg.ToggleActive)

	// ---- Content ----
	b := h.Banners
	mount(g, "/banners", crud{b.List, b.Get, b.Create, b.Update, b.Patch, b.Delete})
	ga := h.Gallery
	mount(g, "/gallery", crud{ga.List, ga.Get, ga.Create, ga.Update, ga.Patch, ga.Delete})
	n := h.News
	mount(g, "/news", crud{n.List, n.Get, n.Create, n.Update, n.Patch, n.Delete})

	// ---- Players ----
	p := h.Players
	g.GET("/players/export.csv", p.ExportCSV)
	mount(g, "/players", crud{p.List, p.Get, p.Create, p.Update, p.Patch, p.Delete})
	g.POST("/players/:id/transactions", p.AddTransaction)
	g.DELETE("/players/:id/transactions/:txId", p.DeleteTransaction)

	g.POST("/images", h.Uploads.Image)
	g.GET("/dashboard/stats", h.Dashboard.Stats)
}
