package processor

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress draws one fetch bar per split.
type Progress struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{
		p:    mpb.New(mpb.WithOutput(w), mpb.WithWidth(60)),
		bars: map[string]*mpb.Bar{},
	}
}

// Update matches source.ProgressFunc.
func (pr *Progress) Update(split string, fetched, total int) {
	if total <= 0 {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	bar, ok := pr.bars[split]
	if !ok {
		bar = pr.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name(split+": "),
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.OnComplete(decor.Percentage(decor.WCSyncSpace), "done!"),
			),
		)
		pr.bars[split] = bar
	}
	bar.SetCurrent(int64(fetched))
}

// Wait aborts unfinished bars, so it never blocks after a failed fetch.
func (pr *Progress) Wait() {
	pr.mu.Lock()
	for _, b := range pr.bars {
		if !b.Completed() {
			b.Abort(false)
		}
	}
	pr.mu.Unlock()
	pr.p.Wait()
}
