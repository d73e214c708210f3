package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"resume-generator/internal/generation"
)

// progressBar draws a single-line bar on every update. It implements
// generation.Observer and never blocks on anything but the writer.
type progressBar struct {
	mu     sync.Mutex
	out    io.Writer
	bar    progress.Model
	drawn  bool
	minGap time.Duration
	last   time.Time
	now    func() time.Time
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{
		out:    out,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		minGap: 100 * time.Millisecond,
		now:    time.Now,
	}
}

// Progress implements generation.Observer.
func (b *progressBar) Progress(p generation.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if p.Done < p.Total && b.drawn && now.Sub(b.last) < b.minGap {
		return
	}
	b.last = now
	b.drawn = true

	percent := 0.0
	if p.Total > 0 {
		percent = float64(p.Done) / float64(p.Total)
	}
	fmt.Fprintf(b.out, "\r%s %d/%d  failed %d  elapsed %s  eta %s ",
		b.bar.ViewAs(percent),
		p.Done, p.Total, p.Failed,
		formatDuration(p.Elapsed),
		formatDuration(eta(p)),
	)
}

// Finish ends the bar line.
func (b *progressBar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawn {
		fmt.Fprintln(b.out)
		b.drawn = false
	}
}

// eta extrapolates the remaining time from the average pace so far.
func eta(p generation.Progress) time.Duration {
	if p.Done == 0 || p.Done >= p.Total {
		return 0
	}
	perItem := p.Elapsed / time.Duration(p.Done)
	return perItem * time.Duration(p.Total-p.Done)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

var _ generation.Observer = (*progressBar)(nil)
