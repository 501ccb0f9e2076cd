// Package dummydb provides in-memory repositories that mirror the SQL
// semantics, used by tests and local hacking.
package dummydb

import (
	"sync"

	"github.com/bdzone/staffboard/core/apitoken"
	"github.com/bdzone/staffboard/core/ledger"
	"github.com/bdzone/staffboard/core/staff"
)

type (
	DB struct {
		staff  *staffTables
		ledger *ledgerTables
		tokens *tokenTable
	}

	// three role partitions, as in the SQL schema
	staffTables struct {
		sync.RWMutex
		moderators map[string]*staff.Staff
		builders   map[string]*staff.Staff
		managers   map[string]*staff.Staff
	}

	ledgerTables struct {
		sync.RWMutex
		events  []*ledger.Event
		weights map[string]*ledger.ActionWeight // by action
	}

	tokenTable struct {
		sync.RWMutex
		table map[string]*apitoken.Token
	}
)

func NewDB() *DB {
	return &DB{
		staff: &staffTables{
			moderators: make(map[string]*staff.Staff),
			builders:   make(map[string]*staff.Staff),
			managers:   make(map[string]*staff.Staff),
		},
		ledger: &ledgerTables{
			weights: make(map[string]*ledger.ActionWeight),
		},
		tokens: &tokenTable{
			table: make(map[string]*apitoken.Token),
		},
	}
}
