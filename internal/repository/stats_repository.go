package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/model"
)

// StatsRepo answers the single-number questions of the admin dashboard.
// Each method is one independent query so callers can run them in
// parallel.
type StatsRepo struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

func (r *StatsRepo) count(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *StatsRepo) UpcomingTournaments(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM tournaments WHERE status = ? AND start_time >= ?",
		model.TournamentUpcoming, now)
}

func (r *StatsRepo) ActiveCashGames(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM cash_games WHERE is_active = ?", true)
}

func (r *StatsRepo) Players(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM players")
}

func (r *StatsRepo) PublishedNews(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM news_articles WHERE status = ?", model.NewsPublished)
}

func (r *StatsRepo) ActiveBanners(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM banners WHERE is_active = ?", true)
}

func (r *StatsRepo) GalleryImages(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM gallery_images")
}

// LedgerBalance is the net of every deposit and withdrawal.
func (r *StatsRepo) LedgerBalance(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COALESCE(SUM(CASE WHEN type = 'deposit' THEN amount ELSE -amount END), 0)
		FROM player_transactions`)
}
