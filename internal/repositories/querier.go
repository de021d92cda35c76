package repositories

import "github.com/jmoiron/sqlx"

// Querier is the database handle every repository method runs on.
// Both *sqlx.DB and *sqlx.Tx satisfy it, so callers choose the transaction scope.
type Querier = sqlx.ExtContext
