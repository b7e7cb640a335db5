package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/repository"
)

// fakeLedger keeps players and transactions in memory and derives the
// totals the way the SQL view does.
type fakeLedger struct {
	PlayerStore
	players map[uint64]model.Player
	txs     []model.Transaction
	last    repository.PlayerFilter
	patched map[string]any
}

func newFakeLedger(players ...model.Player) *fakeLedger {
	f := &fakeLedger{players: map[uint64]model.Player{}}
	for _, p := range players {
		f.players[p.ID] = p
	}
	return f
}

func (f *fakeLedger) totals(p model.Player) model.Player {
	p.TotalDeposits, p.TotalWithdrawals, p.Balance = 0, 0, 0
	for _, tx := range f.txs {
		if tx.PlayerID != p.ID {
			continue
		}
		if tx.Type == model.TransactionDeposit {
			p.TotalDeposits += tx.Amount
		} else {
			p.TotalWithdrawals += tx.Amount
		}
	}
	p.Balance = p.TotalDeposits - p.TotalWithdrawals
	return p
}

func (f *fakeLedger) List(_ context.Context, flt repository.PlayerFilter) ([]model.Player, error) {
	f.last = flt
	var out []model.Player
	for id := uint64(1); id <= uint64(len(f.players)); id++ {
		if p, ok := f.players[id]; ok {
			out = append(out, f.totals(p))
		}
	}
	return out, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uint64) (*model.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = f.totals(p)
	return &p, nil
}

func (f *fakeLedger) Create(_ context.Context, p *model.Player) error {
	p.ID = uint64(len(f.players) + 1)
	f.players[p.ID] = *p
	return nil
}

func (f *fakeLedger) Update(_ context.Context, p *model.Player) error {
	if _, ok := f.players[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.players[p.ID] = *p
	return nil
}

func (f *fakeLedger) Patch(_ context.Context, id uint64, cols map[string]any) error {
	p, ok := f.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.patched = cols
	if v, ok := cols["notes"].(string); ok {
		p.Notes = v
	}
	f.players[id] = p
	return nil
}

func (f *fakeLedger) Transactions(_ context.Context, playerID uint64) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for _, tx := range f.txs {
		if tx.PlayerID == playerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeLedger) AddTransaction(_ context.Context, tx *model.Transaction) error {
	if _, ok := f.players[tx.PlayerID]; !ok {
		return repository.ErrNotFound
	}
	tx.ID = uint64(len(f.txs) + 1)
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, playerID, txID uint64) error {
	for i, tx := range f.txs {
		if tx.ID == txID && tx.PlayerID == playerID {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func playerEcho(store *fakeLedger) (*PlayerHandler, *recordingNotifier) {
	n := &recordingNotifier{}
	h := NewPlayerHandler(store, n, nopLog())
	h.Now = clock
	return h, n
}

func TestPlayerLedgerFlow(t *testing.T) {
	store := newFakeLedger(model.Player{ID: 1, Name: "Kovács Anna", Nickname: "Anna"})
	h, n := playerEcho(store)
	e := newEcho()
	e.POST("/api/admin/players/:id/transactions", h.AddTransaction)
	e.DELETE("/api/admin/players/:id/transactions/:txId", h.DeleteTransaction)
	e.GET("/api/admin/players/:id", h.Get)

	rec := request(t, e, http.MethodPost, "/api/admin/players/1/transactions", `{"type":"deposit","amount":50000,"note":"  cash  "}`)
	okStatus(t, rec, http.StatusCreated)
	var added struct {
		Transaction model.Transaction `json:"transaction"`
		Player      model.Player      `json:"player"`
	}
	require.NoError(t, sonicAPI.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, "cash", added.Transaction.Note)
	assert.Equal(t, int64(50000), added.Player.Balance)

	// Withdrawals may take the balance below zero.
	okStatus(t, request(t, e, http.MethodPost, "/api/admin/players/1/transactions", `{"type":"withdrawal","amount":80000}`), http.StatusCreated)

	rec = request(t, e, http.MethodGet, "/api/admin/players/1", "")
	okStatus(t, rec, http.StatusOK)
	detail := decode[playerDetail](t, rec)
	assert.Equal(t, int64(50000), detail.TotalDeposits)
	assert.Equal(t, int64(80000), detail.TotalWithdrawals)
	assert.Equal(t, int64(-30000), detail.Balance)
	require.Len(t, detail.Transactions, 2)

	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/players/1/transactions/2", ""), http.StatusNoContent)
	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/players/1/transactions/2", ""), http.StatusNotFound)
	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/players/1/transactions/x", ""), http.StatusBadRequest)

	p, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), p.Balance)
	assert.Len(t, n.all(), 3)
}

func TestPlayerTransactionValidation(t *testing.T) {
	h, _ := playerEcho(newFakeLedger(model.Player{ID: 1, Name: "A"}))
	e := newEcho()
	e.POST("/api/admin/players/:id/transactions", h.AddTransaction)

	cases := map[string]struct {
		target, body string
		want         int
	}{
		"zero amount":    {"/api/admin/players/1/transactions", `{"type":"deposit","amount":0}`, http.StatusBadRequest},
		"negative":       {"/api/admin/players/1/transactions", `{"type":"deposit","amount":-5}`, http.StatusBadRequest},
		"unknown type":   {"/api/admin/players/1/transactions", `{"type":"bonus","amount":5}`, http.StatusBadRequest},
		"missing type":   {"/api/admin/players/1/transactions", `{"amount":5}`, http.StatusBadRequest},
		"unknown player": {"/api/admin/players/7/transactions", `{"type":"deposit","amount":5}`, http.StatusNotFound},
		"bad id":         {"/api/admin/players/0/transactions", `{"type":"deposit","amount":5}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			okStatus(t, request(t, e, http.MethodPost, tc.target, tc.body), tc.want)
		})
	}
}

func TestPlayerCreateAndSearch(t *testing.T) {
	store := newFakeLedger()
	h, _ := playerEcho(store)
	e := newEcho()
	e.POST("/api/admin/players", h.Create)
	e.GET("/api/admin/players", h.List)

	okStatus(t, request(t, e, http.MethodPost, "/api/admin/players", `{"name":"Nagy Béla","email":"not-an-email"}`), http.StatusBadRequest)
	rec := request(t, e, http.MethodPost, "/api/admin/players", `{"name":" Nagy Béla ","email":"bela@example.com"}`)
	okStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "Nagy Béla", decode[model.Player](t, rec).Name)

	okStatus(t, request(t, e, http.MethodGet, "/api/admin/players?q=%20bela%20", ""), http.StatusOK)
	assert.Equal(t, "bela", store.last.Search)
}

func TestPlayerExportCSV(t *testing.T) {
	store := newFakeLedger(
		model.Player{ID: 1, Name: "Kovács, Anna", Email: "anna@example.com"},
		model.Player{ID: 2, Name: "Béla"},
	)
	store.txs = []model.Transaction{
		{ID: 1, PlayerID: 1, Type: model.TransactionDeposit, Amount: 20000},
		{ID: 2, PlayerID: 1, Type: model.TransactionWithdrawal, Amount: 5000},
	}
	h, _ := playerEcho(store)
	e := newEcho()
	e.GET("/api/admin/players/export", h.ExportCSV)

	rec := request(t, e, http.MethodGet, "/api/admin/players/export", "")
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "players-20261017.csv")

	body := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte("\ufeff")))
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ledgerHeader, rows[0])
	assert.Equal(t, []string{"1", "Kovács, Anna", "", "anna@example.com", "", "20000", "5000", "15000"}, rows[1])
	assert.Equal(t, "0", rows[2][7])
}

func TestWriteLedgerEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, writeLedger(&b, nil))
	assert.Equal(t, strings.Join(ledgerHeader, ",")+"\n", b.String())
}

func TestPlayerCreateThenEditRoundTrip(t *testing.T) {
	store := newFakeLedger()
	h, n := playerEcho(store)
	e := newEcho()
	e.POST("/api/admin/players", h.Create)
	e.GET("/api/admin/players/:id", h.Get)
	e.PUT("/api/admin/players/:id", h.Update)
	e.PATCH("/api/admin/players/:id", h.Patch)

	okStatus(t, request(t, e, http.MethodPost, "/api/admin/players", `{"name":" Kovács Anna ","email":"anna@example.com"}`), http.StatusCreated)

	rec := request(t, e, http.MethodGet, "/api/admin/players/1", "")
	okStatus(t, rec, http.StatusOK)
	p := decode[model.Player](t, rec)
	assert.Equal(t, "Kovács Anna", p.Name)
	assert.Equal(t, "anna@example.com", p.Email)
	assert.Zero(t, p.Balance)

	rec = request(t, e, http.MethodPut, "/api/admin/players/1", `{"name":"Kovács Anna","nickname":"Annie","email":"anna@club.hu","phone":"+36 30 123 4567"}`)
	okStatus(t, rec, http.StatusOK)
	p = decode[model.Player](t, request(t, e, http.MethodGet, "/api/admin/players/1", ""))
	assert.Equal(t, "Annie", p.Nickname)
	assert.Equal(t, "anna@club.hu", p.Email)
	assert.Equal(t, "+36 30 123 4567", p.Phone)

	okStatus(t, request(t, e, http.MethodPut, "/api/admin/players/1", `{"name":"Kovács Anna","email":"nope"}`), http.StatusBadRequest)
	for _, body := range []string{`{"email":"not-an-email"}`, `{"name":""}`, `{"balance":100}`} {
		okStatus(t, request(t, e, http.MethodPatch, "/api/admin/players/1", body), http.StatusBadRequest)
	}
	assert.Nil(t, store.patched)

	rec = request(t, e, http.MethodPatch, "/api/admin/players/1", `{"notes":"VIP"}`)
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, map[string]any{"notes": "VIP"}, store.patched)
	assert.Equal(t, "VIP", decode[model.Player](t, rec).Notes)
	assert.Len(t, n.all(), 3)
}
