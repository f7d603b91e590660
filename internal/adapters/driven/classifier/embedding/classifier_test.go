package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	inputs  []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.inputs = texts
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 2 }
func (f *fakeEmbedder) ModelName() string            { return "fake" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return f.err }
func (f *fakeEmbedder) Close() error                 { return nil }

func TestNewClassifier(t *testing.T) {
	_, err := NewClassifier(nil, 0)
	require.Error(t, err)

	c, err := NewClassifier(&fakeEmbedder{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTemperature, c.temperature, 1e-12)
	assert.Equal(t, "embedding:fake", c.ModelName())
}

func TestClassifier_Classify(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"any open roles?": {1, 0},
		"careers":         {0.9, 0.1},
		"blog":            {0, 1},
		"services":        {0.5, 0.5},
	}}
	c, err := NewClassifier(embedder, 0)
	require.NoError(t, err)

	result, err := c.Classify(context.Background(), "any open roles?", []string{"blog", "careers", "services"})

	require.NoError(t, err)
	assert.Equal(t, []string{"any open roles?", "blog", "careers", "services"}, embedder.inputs)
	assert.Equal(t, []string{"careers", "services", "blog"}, result.Labels)
	var sum float64
	for _, s := range result.Scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, result.Scores[0], 0.9)
}

func TestClassifier_Classify_NoLabels(t *testing.T) {
	embedder := &fakeEmbedder{}
	c, err := NewClassifier(embedder, 0)
	require.NoError(t, err)

	result, err := c.Classify(context.Background(), "hello", nil)

	require.NoError(t, err)
	assert.Zero(t, result.Len())
	assert.Nil(t, embedder.inputs)
}

func TestClassifier_Classify_EmbeddingError(t *testing.T) {
	boom := errors.New("connection refused")
	c, err := NewClassifier(&fakeEmbedder{err: boom}, 0)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "hello", []string{"a"})

	assert.ErrorIs(t, err, boom)
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float64{1000, 1000})

	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[1], 1e-12)
}
