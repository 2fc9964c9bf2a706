package snapshotstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setup(t *testing.T) *Store {
	cleanup := telemetry.SetupForTesting("test:snapshotstore")
	t.Cleanup(cleanup)

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlite.Close() })

	store, err := NewStore(sqlite)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.Get(ctx, "production", 2020)
	require.ErrorIs(t, err, ErrNotFound)

	rows := []vitibrasil.RawRow{
		{"Produto": "VINHO DE MESA", "Quantidade (L.)": "169.762.429", "Ano": "2020"},
		{"Produto": "Tinto", "Quantidade (L.)": "139.320.884", "Ano": "2020", "Classificacao": "VINHO DE MESA"},
	}
	err = store.Put(ctx, "production", 2020, rows)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "production", 2020)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, rows, got)

	// other keys stay independent
	_, err = store.Get(ctx, "production", 2019)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "export", 2020)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreLastWriteWins(t *testing.T) {
	store := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	first := []vitibrasil.RawRow{{"Países": "Argentina", "Quantidade (Kg)": "1"}}
	second := []vitibrasil.RawRow{
		{"Países": "Argentina", "Quantidade (Kg)": "2"},
		{"Países": "Chile", "Quantidade (Kg)": "3"},
	}

	if err := store.Put(ctx, "import", 2021, first); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "import", 2021, second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "import", 2021)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, second, got)
}

func TestStoreKeepsEmptyCells(t *testing.T) {
	store := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// an empty quantity cell means zero; a missing quantity column means
	// the row can't be normalized at all. the codec must not collapse
	// the two.
	rows := []vitibrasil.RawRow{
		{"Produto": "VINHO DE MESA", "Quantidade (L.)": "", "Ano": "2020"},
		{"Produto": "SUCO", "Ano": "2020"},
	}
	if err := store.Put(ctx, "production", 2020, rows); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "production", 2020)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, rows, got)

	_, present := got[0]["Quantidade (L.)"]
	require.True(t, present)
	_, present = got[1]["Quantidade (L.)"]
	require.False(t, present)
}

func TestStoreCorruptPayload(t *testing.T) {
	store := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.db.ExecContext(
		ctx,
		`INSERT INTO snapshots (category, year, taken_at, payload) VALUES (?, ?, ?, ?)`,
		"export", 1999, time.Now().Unix(), []byte("Países;Quantidade (Kg)\n\"unterminated"),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Get(ctx, "export", 1999)
	require.ErrorIs(t, err, ErrCorrupt)
}
