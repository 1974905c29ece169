/*****************************************************************************************************************/

//	@author		Michael Roberts <michael@observerly.com>
//	@package	@observerly/iad
//	@license	Copyright © 2021-2025 observerly

/*****************************************************************************************************************/

package runid

/*****************************************************************************************************************/

import "testing"

/*****************************************************************************************************************/

func TestNewReturnsDistinctNonEmptyIDs(t *testing.T) {
	a := New()
	b := New()

	if a == "" || b == "" {
		t.Fatal("New returned an empty string")
	}

	if a == b {
		t.Errorf("New() returned the same ID twice: %v", a)
	}

	if len(a) != 26 {
		t.Errorf("len(New()) = %d; want 26 (canonical ULID string length)", len(a))
	}
}
