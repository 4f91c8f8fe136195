// Package iocache persists the history of hoc runs.
package iocache

import (
	"sync"

	"github.com/huangsam/hoc/internal/contract"
)

// RunStoreManager owns the RunStore shared by the commands.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when none was initialized.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
