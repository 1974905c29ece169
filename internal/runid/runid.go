/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

// Package runid tags batch runs with a sortable, unique identifier.
package runid

/*****************************************************************************************************************/

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

/*****************************************************************************************************************/

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

/*****************************************************************************************************************/

// New returns a new ULID string, sortable by creation time to the
// millisecond, used to tag an Experiment batch run.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)

	return id.String()
}
