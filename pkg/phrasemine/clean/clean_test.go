package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripEmojis(t *testing.T) {
	assert.Equal(t, "gm  frens ", StripEmojis("gm 🚀🚀 frens ☀️"))
}

func TestStripTags(t *testing.T) {
	cases := map[string]string{
		"<b>staking</b> rewards": " staking  rewards",
		"no tags here":           "no tags here",
		"<p>zk<br/>rollup</p>":   " zk rollup ",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripTags(in), "StripTags(%q)", in)
	}
}

func TestStripNumbers(t *testing.T) {
	cases := map[string]string{
		"3.33 blockchain":      " blockchain",
		"web3 is here":         "web3 is here",
		"raised 1,000,000 usd": "raised usd",
		"1 2 3 go":             " go",
		"layer 2":              "layer ",
	}
	for in, want := range cases {
		assert.Equal(t, CollapseSpaces(want), CollapseSpaces(StripNumbers(in)), "StripNumbers(%q)", in)
	}
}

func TestStripLinks(t *testing.T) {
	assert.Equal(t, "read today", CollapseSpaces(StripLinks("read https://docs.polygon.technology/pos today")))
}

func TestMessage(t *testing.T) {
	in := "We're launching <b>incentivized</b> testnet 🚀 on polygon 2 today https://tokensoft.io"
	assert.Equal(t, "We're launching incentivized testnet on polygon today", Message(in))
	assert.Equal(t, "layer rollups", Message("layer 2 rollups 🚀"))
}
