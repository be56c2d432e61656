package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

const message = "We're launching incentivized testnet on polygon today at tokensoft"

func TestFilterDropsAbsentPhrases(t *testing.T) {
	v := New(nil)
	got := v.Filter([]string{"incentivized testnet", "launching testnet", "polygon"}, message)
	assert.Equal(t, []string{"incentivized testnet", "polygon"}, got)
}

func TestFilterIsCaseSensitive(t *testing.T) {
	v := New(nil)
	assert.Empty(t, v.Filter([]string{"Polygon"}, message))
}

func TestFilterDropsStopwords(t *testing.T) {
	v := New(stoplist.New([]string{"today", "at"}))
	got := v.Filter([]string{"today", "tokensoft", "at"}, message)
	assert.Equal(t, []string{"tokensoft"}, got)
}

func TestFilterPreservesOrder(t *testing.T) {
	v := New(stoplist.English())
	got := v.Filter([]string{"tokensoft", "polygon", "testnet"}, message)
	assert.Equal(t, []string{"tokensoft", "polygon", "testnet"}, got)
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, New(nil).Filter(nil, message))
}
