package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// sakilaSeed is a minimal slice of the Sakila schema: enough rows for every
// report query to return a known result.
//
//	payments:          3 rows, 1.25 / 5 / 9 / 3
//	film duration:     60 / 120 / 270 / 90
//	profitable actors: NICK WAHLBERG 4, PENELOPE GUINESS 1.25
var sakilaSeed = []string{
	`CREATE TABLE actor (actor_id INTEGER PRIMARY KEY, first_name TEXT NOT NULL, last_name TEXT NOT NULL)`,
	`CREATE TABLE film (film_id INTEGER PRIMARY KEY, title TEXT NOT NULL, length INTEGER)`,
	`CREATE TABLE film_actor (actor_id INTEGER NOT NULL, film_id INTEGER NOT NULL)`,
	`CREATE TABLE inventory (inventory_id INTEGER PRIMARY KEY, film_id INTEGER NOT NULL)`,
	`CREATE TABLE rental (rental_id INTEGER PRIMARY KEY, inventory_id INTEGER NOT NULL)`,
	`CREATE TABLE payment (payment_id INTEGER PRIMARY KEY, rental_id INTEGER, amount REAL NOT NULL)`,
	`INSERT INTO actor VALUES (1, 'PENELOPE', 'GUINESS'), (2, 'NICK', 'WAHLBERG')`,
	`INSERT INTO film VALUES (1, 'ACADEMY DINOSAUR', 60), (2, 'ACE GOLDFINGER', 90), (3, 'ADAPTATION HOLES', 120)`,
	`INSERT INTO film_actor VALUES (1, 1), (2, 1), (2, 2)`,
	`INSERT INTO inventory VALUES (1, 1), (2, 2)`,
	`INSERT INTO rental VALUES (1, 1), (2, 2)`,
	`INSERT INTO payment VALUES (1, 1, 1.25), (2, 2, 2.75), (3, NULL, 5.0)`,
}

// Expected report files for the seeded database.
const (
	SakilaPaymentsTSV         = "Records\tMinimum\tMaximum\tTotal\tAverage\n3\t1.25\t5\t9\t3\n"
	SakilaDurationTSV         = "Minimum\tMaximum\tTotal\tAverage\n60\t120\t270\t90\n"
	SakilaProfitableActorsTSV = "ActorID\tFirstName\tLastName\tTotalSale\n2\tNICK\tWAHLBERG\t4\n1\tPENELOPE\tGUINESS\t1.25\n"
)

// NewSakilaDB creates a seeded SQLite database file in a temporary
// directory and returns its path.
func NewSakilaDB(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sakila.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range sakilaSeed {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

// CountRows returns the number of rows in table of the SQLite file at path.
func CountRows(t testing.TB, path, table string) int {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
