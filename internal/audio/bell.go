package audio

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNotLoaded = errors.New("cue not loaded")

// Bell plays cues as terminal bell characters. The alarm rings several times
// so it stands out from a move click.
type Bell struct {
	mu     sync.Mutex
	w      io.Writer
	loaded bool
	rings  map[Cue]int
}

func NewBell(w io.Writer) *Bell {
	return &Bell{
		w: w,
		rings: map[Cue]int{
			CueClick: 1,
			CueAlarm: 3,
		},
	}
}

func (b *Bell) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.w == nil {
		return errors.New("bell has no output")
	}
	b.loaded = true
	log.Debug().Msg("bell cues loaded")
	return nil
}

// PlayFromStart loads the bell on first use, so callers that skip Load still
// hear the first cue.
func (b *Bell) PlayFromStart(ctx context.Context, cue Cue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if !loaded {
		if err := b.Load(ctx); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.rings[cue]
	if !ok {
		return errors.Wrapf(ErrNotLoaded, "cue %q", cue)
	}
	if _, err := io.WriteString(b.w, strings.Repeat("\a", n)); err != nil {
		return errors.Wrap(err, "write bell")
	}
	return nil
}
