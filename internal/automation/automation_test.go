package automation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backend/internal/chain"
	"backend/internal/drand"
	"backend/internal/engine"
	"backend/internal/storage"

	"github.com/stretchr/testify/require"
	bls12381 "github.com/drand/kyber-bls12381"
)

type passValidator struct{}

func (passValidator) Validate(address string) (string, error) {
	return strings.ToLower(address), nil
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	store := storage.NewSqliteStorage(filepath.Join(t.TempDir(), "test.db"))
	e := engine.New(store, passValidator{})
	require.NoError(t, e.InitConfig("core1admin", 500, nil, drand.MainnetPubkey))
	return e
}

// beaconServer serves /public/latest with a triple that passes the binding
// check for the current wall clock.
func beaconServer(t *testing.T) *httptest.Server {
	t.Helper()

	signature, err := bls12381.NewBLS12381Suite().G2().Point().Base().MarshalBinary()
	require.NoError(t, err)
	randomness := sha256.Sum256(signature)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public/latest", r.URL.Path)
		json.NewEncoder(w).Encode(drand.PublicRound{
			Round:      drand.CurrentRound(time.Now()),
			Randomness: hex.EncodeToString(randomness[:]),
			Signature:  hex.EncodeToString(signature),
		})
	}))
}

func TestSweepEndsSoldOutRaffle(t *testing.T) {
	e := newTestEngine(t)
	server := beaconServer(t)
	defer server.Close()

	now := time.Now()
	id, err := e.CreateRaffle(now, engine.CreateParams{
		Creator:       "core1creator",
		PrizeContract: "core1nft",
		PrizeTokenID:  "1",
		Price:         chain.Coin{Denom: "ucore", Amount: 10},
		MaxTickets:    2,
		EndTime:       now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, e.BuyTickets(now, id, "core1alice", 2, chain.Coin{Denom: "ucore", Amount: 20}))

	a := New(context.Background(), e, drand.NewClient(server.URL, 5*time.Second), "core1operator", time.Minute)
	require.NoError(t, a.Sweep(time.Now()))

	view, err := e.Raffle(id)
	require.NoError(t, err)
	require.Equal(t, storage.StatusCompleted, view.Status)
	require.Equal(t, "core1alice", view.Winner)
}

func TestSweepSkipsIneligibleRaffles(t *testing.T) {
	e := newTestEngine(t)
	server := beaconServer(t)
	defer server.Close()

	now := time.Now()

	// still selling
	open, err := e.CreateRaffle(now, engine.CreateParams{
		Creator:       "core1creator",
		PrizeContract: "core1nft",
		PrizeTokenID:  "1",
		Price:         chain.Coin{Denom: "ucore", Amount: 10},
		MaxTickets:    5,
		EndTime:       now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, e.BuyTickets(now, open, "core1alice", 1, chain.Coin{Denom: "ucore", Amount: 10}))

	// expired but empty: never settled, just skipped
	empty, err := e.CreateRaffle(now, engine.CreateParams{
		Creator:       "core1creator",
		PrizeContract: "core1nft",
		PrizeTokenID:  "2",
		Price:         chain.Coin{Denom: "ucore", Amount: 10},
		MaxTickets:    5,
		EndTime:       now.Add(time.Second),
	})
	require.NoError(t, err)

	a := New(context.Background(), e, drand.NewClient(server.URL, 5*time.Second), "core1operator", time.Minute)
	require.NoError(t, a.Sweep(now.Add(time.Minute)))

	for _, id := range []uint64{open, empty} {
		view, err := e.Raffle(id)
		require.NoError(t, err)
		require.Equal(t, storage.StatusActive, view.Status)
	}
}

func TestSweepTimeBuffer(t *testing.T) {
	e := newTestEngine(t)
	server := beaconServer(t)
	defer server.Close()

	now := time.Now()
	id, err := e.CreateRaffle(now, engine.CreateParams{
		Creator:       "core1creator",
		PrizeContract: "core1nft",
		PrizeTokenID:  "1",
		Price:         chain.Coin{Denom: "ucore", Amount: 10},
		MaxTickets:    5,
		EndTime:       now.Add(time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, e.BuyTickets(now, id, "core1alice", 1, chain.Coin{Denom: "ucore", Amount: 10}))

	a := New(context.Background(), e, drand.NewClient(server.URL, 5*time.Second), "core1operator", time.Minute)

	// just past end_time the buffer holds the sweep back
	require.NoError(t, a.Sweep(now.Add(time.Minute+time.Second)))
	view, err := e.Raffle(id)
	require.NoError(t, err)
	require.Equal(t, storage.StatusActive, view.Status)

	// once the buffer has elapsed the raffle is ended
	require.NoError(t, a.Sweep(now.Add(2*time.Minute)))
	view, err = e.Raffle(id)
	require.NoError(t, err)
	require.Equal(t, storage.StatusCompleted, view.Status)
}
