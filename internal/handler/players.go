package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
)

type PlayerStore interface {
	List(ctx context.Context, f repository.PlayerFilter) ([]model.Player, error)
	GetByID(ctx context.Context, id uint64) (*model.Player, error)
	Create(ctx context.Context, p *model.Player) error
	Update(ctx context.Context, p *model.Player) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	Delete(ctx context.Context, id uint64) error
	Transactions(ctx context.Context, playerID uint64) ([]model.Transaction, error)
	AddTransaction(ctx context.Context, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, playerID, txID uint64) error
}

// PlayerHandler manages the player ledger.  Totals are always derived
// from the transaction log.
type PlayerHandler struct {
	Store  PlayerStore
	Notify Notifier
	Log    *logging.Logger
	Now    func() time.Time
}

func NewPlayerHandler(store PlayerStore, notify Notifier, log *logging.Logger) *PlayerHandler {
	return &PlayerHandler{Store: store, Notify: notifierOr(notify), Log: loggerOr(log).With("handler", "players"), Now: time.Now}
}

type playerReq struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name" validate:"required,max=255"`
	Nickname string `json:"nickname" validate:"max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Phone    string `json:"phone" validate:"max=64"`
	Notes    string `json:"notes"`
}

func (r *playerReq) model() *model.Player {
	return &model.Player{
		ID:       r.ID,
		Name:     strings.TrimSpace(r.Name),
		Nickname: strings.TrimSpace(r.Nickname),
		Email:    strings.TrimSpace(r.Email),
		Phone:    strings.TrimSpace(r.Phone),
		Notes:    r.Notes,
	}
}

type transactionReq struct {
	Type   string `json:"type" validate:"required,oneof=deposit withdrawal"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Note   string `json:"note" validate:"max=512"`
}

type playerDetail struct {
	model.Player
	Transactions []model.Transaction `json:"transactions"`
}

func (h *PlayerHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.PlayerFilter{Search: strings.TrimSpace(c.QueryParam("q"))})
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns the player with totals and the full transaction list.
func (h *PlayerHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	txs, err := h.Store.Transactions(ctx, id)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	return c.JSON(http.StatusOK, playerDetail{Player: *p, Transactions: txs})
}

func (h *PlayerHandler) Create(c echo.Context) error {
	var req playerReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "player", err)
	}
	p := req.model()
	p.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, p); err != nil {
		return fail(c, h.Log, "player", err)
	}
	h.Notify.Changed(ctx, cache.Players, queue.ActionCreated, p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *PlayerHandler) Update(c echo.Context) error {
	var req playerReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "player", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	p := req.model()
	p.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, p); err != nil {
		return fail(c, h.Log, "player", err)
	}
	h.Notify.Changed(ctx, cache.Players, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, p)
}

func (h *PlayerHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.Players)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	if email, ok := cols["email"].(string); ok {
		v := struct {
			Email string `json:"email" validate:"omitempty,email"`
		}{email}
		if err := c.Validate(&v); err != nil {
			return fail(c, h.Log, "player", err)
		}
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "player", err)
	}
	h.Notify.Changed(ctx, cache.Players, queue.ActionUpdated, id)
	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes the player together with the ledger entries.
func (h *PlayerHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "player", err)
	}
	h.Notify.Changed(ctx, cache.Players, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}

// AddTransaction handles POST /players/:id/transactions and answers with
// the refreshed player.
func (h *PlayerHandler) AddTransaction(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, h.Log, "player", badRequest("invalid id"))
	}
	var req transactionReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "player", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	tx := &model.Transaction{PlayerID: id, Type: req.Type, Amount: req.Amount, Note: strings.TrimSpace(req.Note)}
	if err := h.Store.AddTransaction(ctx, tx); err != nil {
		return fail(c, h.Log, "player", err)
	}
	h.Log.Info("ledger entry added", "player_id", id, "type", tx.Type, "amount", tx.Amount)
	h.Notify.Changed(ctx, cache.Players, queue.ActionUpdated, id)

	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "player", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"transaction": tx, "player": p})
}

// DeleteTransaction handles DELETE /players/:id/transactions/:txId.
func (h *PlayerHandler) DeleteTransaction(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, h.Log, "transaction", badRequest("invalid id"))
	}
	txID, ok := parseID(c.Param("txId"))
	if !ok {
		return fail(c, h.Log, "transaction", badRequest("invalid transaction id"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.DeleteTransaction(ctx, id, txID); err != nil {
		return fail(c, h.Log, "transaction", err)
	}
	h.Notify.Changed(ctx, cache.Players, queue.ActionUpdated, id)
	return c.NoContent(http.StatusNoContent)
}

var ledgerHeader = []string{"id", "name", "nickname", "email", "phone", "totalDeposits", "totalWithdrawals", "balance"}

// ExportCSV streams the ledger as UTF-8 CSV with a BOM so spreadsheet
// tools detect the encoding of accented names.
func (h *PlayerHandler) ExportCSV(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	players, err := h.Store.List(ctx, repository.PlayerFilter{})
	if err != nil {
		return fail(c, h.Log, "player", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="players-%s.csv"`, h.Now().UTC().Format("20060102")))
	res.WriteHeader(http.StatusOK)

	if _, err := res.Write([]byte("\ufeff")); err != nil {
		return err
	}
	return writeLedger(res, players)
}

func writeLedger(w io.Writer, players []model.Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, p := range players {
		rec := []string{
			strconv.FormatUint(p.ID, 10),
			p.Name,
			p.Nickname,
			p.Email,
			p.Phone,
			strconv.FormatInt(p.TotalDeposits, 10),
			strconv.FormatInt(p.TotalWithdrawals, 10),
			strconv.FormatInt(p.Balance, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
