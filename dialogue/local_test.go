package dialogue

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/slotagent/types"
)

func TestLocalRenderer(t *testing.T) {
	ctx := context.Background()
	r := &LocalRenderer{}

	msg, err := r.Render(ctx, &Directive{
		Phase:            types.PhaseCollecting,
		Acknowledgements: []string{"Thanks Nathan."},
		NextQuestion:     "Is that all correct?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanks Nathan.\nIs that all correct?", msg)

	msg, err = r.Render(ctx, &Directive{
		Phase:          types.PhaseCollecting,
		ErrorDirective: "Invalid phone number format",
		NextQuestion:   "What is your phone number?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Invalid phone number format", msg)

	msg, _ = r.Render(ctx, &Directive{Phase: types.PhaseCompleted})
	assert.Equal(t, DefaultCompletedMessage, msg)

	custom := &LocalRenderer{FailedMessage: "Goodbye."}
	msg, _ = custom.Render(ctx, &Directive{Phase: types.PhaseFailed})
	assert.Equal(t, "Goodbye.", msg)

	msg, _ = r.Render(ctx, &Directive{Phase: types.PhaseCollecting})
	assert.Equal(t, DefaultContinueMessage, msg)
}

func TestLocalRendererStream(t *testing.T) {
	r := &LocalRenderer{}
	stream, err := r.RenderStream(context.Background(), &Directive{Phase: types.PhaseCompleted})
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, DefaultCompletedMessage, chunk)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

type brokenRenderer struct{}

func (brokenRenderer) Render(context.Context, *Directive) (string, error) {
	return "", errors.New("model unavailable")
}

func TestFailbackRenderer(t *testing.T) {
	ctx := context.Background()
	r := NewFailbackRenderer(brokenRenderer{}, &LocalRenderer{})
	msg, err := r.Render(ctx, &Directive{Phase: types.PhaseCompleted})
	require.NoError(t, err)
	assert.Equal(t, DefaultCompletedMessage, msg)

	_, err = NewFailbackRenderer(brokenRenderer{}).Render(ctx, &Directive{})
	assert.ErrorContains(t, err, "model unavailable")
}
