package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/iliyamo/poker-club/internal/logging"
)

type StatsStore interface {
	UpcomingTournaments(ctx context.Context, now time.Time) (int64, error)
	ActiveCashGames(ctx context.Context) (int64, error)
	Players(ctx context.Context) (int64, error)
	PublishedNews(ctx context.Context) (int64, error)
	ActiveBanners(ctx context.Context) (int64, error)
	GalleryImages(ctx context.Context) (int64, error)
	LedgerBalance(ctx context.Context) (int64, error)
}

// DashboardHandler answers the admin landing page.
type DashboardHandler struct {
	Store StatsStore
	Log   *logging.Logger
	Now   func() time.Time
}

func NewDashboardHandler(stats StatsStore, log *logging.Logger) *DashboardHandler {
	return &DashboardHandler{Store: stats, Log: loggerOr(log).With("handler", "dashboard"), Now: time.Now}
}

type dashboardStats struct {
	UpcomingTournaments int64 `json:"upcomingTournaments"`
	ActiveCashGames     int64 `json:"activeCashGames"`
	Players             int64 `json:"players"`
	PublishedNews       int64 `json:"publishedNews"`
	ActiveBanners       int64 `json:"activeBanners"`
	GalleryImages       int64 `json:"galleryImages"`
	LedgerBalance       int64 `json:"ledgerBalance"`
}

// Stats runs the independent counts concurrently; the first failure
// cancels the rest.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		mu  sync.Mutex
		out dashboardStats
		now = h.Now().UTC()
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(4)
	run := func(dst *int64, q func(context.Context) (int64, error)) {
		p.Go(func(ctx context.Context) error {
			n, err := q(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			*dst = n
			mu.Unlock()
			return nil
		})
	}
	run(&out.UpcomingTournaments, func(ctx context.Context) (int64, error) { return h.Store.UpcomingTournaments(ctx, now) })
	run(&out.ActiveCashGames, h.Store.ActiveCashGames)
	run(&out.Players, h.Store.Players)
	run(&out.PublishedNews, h.Store.PublishedNews)
	run(&out.ActiveBanners, h.Store.ActiveBanners)
	run(&out.GalleryImages, h.Store.GalleryImages)
	run(&out.LedgerBalance, h.Store.LedgerBalance)

	if err := p.Wait(); err != nil {
		return fail(c, h.Log, "dashboard", err)
	}
	return c.JSON(http.StatusOK, out)
}
