package phrasemine

import (
	"context"
	"fmt"

	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
	"github.com/cognicore/phrasemine/pkg/phrasemine/vocab"
)

// EmbedVocabulary returns vocabulary embeddings for enc, reusing vectors
// cached in st when every entry is present and saving them otherwise.
// A nil store always embeds.
func EmbedVocabulary(ctx context.Context, st store.Store, v *vocab.Vocabulary, enc oracle.Encoder) (*vocab.Embedded, bool, error) {
	if st == nil {
		emb, err := vocab.Embed(ctx, v, enc)
		return emb, false, err
	}

	entries := v.Entries()
	cached, ok, err := st.GetVocabEmbeddings(ctx, enc.ModelID(), entries)
	if err != nil {
		return nil, false, fmt.Errorf("read embedding cache: %w", err)
	}
	if ok {
		vecs := make([]oracle.Embedding, len(cached))
		for i, c := range cached {
			vecs[i] = c
		}
		emb, err := vocab.NewEmbedded(v, vecs, enc.ModelID())
		return emb, true, err
	}

	emb, err := vocab.Embed(ctx, v, enc)
	if err != nil {
		return nil, false, err
	}
	raw := make([][]float64, len(emb.Vectors))
	for i, vec := range emb.Vectors {
		raw[i] = vec
	}
	if err := st.SaveVocabEmbeddings(ctx, enc.ModelID(), entries, raw); err != nil {
		return nil, false, fmt.Errorf("write embedding cache: %w", err)
	}
	return emb, false, nil
}
