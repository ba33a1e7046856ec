package v1

import (
	"github.com/tinoosan/bankcore/internal/service/ledger"
	"github.com/tinoosan/bankcore/internal/storage/postgres"
)

// Compile-time interface assertions.
var (
	_ Ledger               = (*ledger.Service)(nil)
	_ ledger.SnapshotStore = (*postgres.Store)(nil)
	_ ReadyChecker         = (*postgres.Store)(nil)
)
