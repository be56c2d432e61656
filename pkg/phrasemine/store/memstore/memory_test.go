package memstore

import (
	"testing"

	"github.com/cognicore/phrasemine/pkg/phrasemine/store/storetest"
)

func TestMemStore(t *testing.T) {
	st := New()
	defer st.Close()
	storetest.Run(t, st)
}
