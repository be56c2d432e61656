package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
)

func TestTokenize(t *testing.T) {
	tokens := NewTokenizer().Tokenize(`We're on layer-2, (finally) "ok"`)
	require.Len(t, tokens, 5)
	assert.Equal(t, "We're", tokens[0].Text)
	assert.Equal(t, "we're", tokens[0].Lower)
	assert.Equal(t, "layer-2", tokens[2].Text)
	assert.True(t, tokens[2].Break)
	assert.Equal(t, "finally", tokens[3].Text)
	assert.True(t, tokens[3].Break)
}

func TestPhraseParserGreedyLongest(t *testing.T) {
	p := NewPhraseParser([]string{"proof of stake", "proof of", "defi"})
	units := p.Parse(NewTokenizer().Tokenize("Proof of Stake chains"))

	require.Len(t, units, 2)
	assert.Equal(t, "Proof of Stake", units[0].Text)
	assert.True(t, units[0].Phrase)
	assert.Equal(t, "chains", units[1].Text)
}

func TestPhraseParserStopsAtBreak(t *testing.T) {
	p := NewPhraseParser([]string{"proof of stake"})
	units := p.Parse(NewTokenizer().Tokenize("proof of. stake"))
	assert.Len(t, units, 3)
}

func TestRuleGenerator(t *testing.T) {
	g := NewRuleGenerator(stoplist.English())
	got, err := g.Generate(context.Background(), "We're launching incentivized testnet on polygon today at tokensoft")
	require.NoError(t, err)
	assert.Equal(t, []string{"launching incentivized testnet", "polygon today", "tokensoft"}, got)
}

func TestRuleGeneratorKeepsVocabularyPhrases(t *testing.T) {
	g := NewRuleGenerator(stoplist.English(), WithPhrases([]string{"proof of stake"}))
	got, err := g.Generate(context.Background(), "moving to proof of stake soon")
	require.NoError(t, err)
	assert.Contains(t, got, "proof of stake")
}

func TestRuleGeneratorLongChunkWindows(t *testing.T) {
	g := NewRuleGenerator(nil, WithMaxWords(2))
	got, err := g.Generate(context.Background(), "cross chain bridge exploit")
	require.NoError(t, err)
	assert.Equal(t, []string{"cross chain", "chain bridge", "bridge exploit"}, got)
}

func TestRuleGeneratorDropsNumbersAndLetters(t *testing.T) {
	got, err := NewRuleGenerator(nil).Generate(context.Background(), "x 2024 airdrop")
	require.NoError(t, err)
	assert.Equal(t, []string{"airdrop"}, got)
}

func TestRuleGeneratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRuleGenerator(nil).Generate(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelect(t *testing.T) {
	got := Select([]string{
		"liquid staking",
		"",
		"staking",            // contained in earlier phrase
		"gm",                 // too short
		"one two three four", // too many words
		"validator set",
		"validator set",
	}, 3)
	assert.Equal(t, []string{"liquid staking", "validator set"}, got)
}

func TestGeneratorFunc(t *testing.T) {
	boom := errors.New("boom")
	g := GeneratorFunc(func(context.Context, string) ([]string, error) { return nil, boom })
	_, err := g.Generate(context.Background(), "msg")
	assert.ErrorIs(t, err, boom)
}
