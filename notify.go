package tropiiify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ErrCanceled is returned when the user aborts at the directory prompt.
var ErrCanceled = errors.New("tropiiify: export canceled")

// Level grades a Notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a user-visible message.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Log zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) {
	ev := l.Log.Info()
	if n.Level == LevelError {
		ev = l.Log.Error()
	}
	ev.Str("title", n.Title).Msg(n.Message)
}

// Prompter asks the user for the output directory. Returning ErrCanceled
// aborts the export before any item is processed.
type Prompter interface {
	ChooseDirectory(ctx context.Context) (string, error)
}

// LinePrompter reads a directory path from a line of input. An empty line
// or EOF cancels.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) ChooseDirectory(ctx context.Context) (string, error) {
	fmt.Fprint(p.Out, "Output directory: ")
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ErrCanceled
	case r := <-ch:
		dir := strings.TrimSpace(r.line)
		if dir == "" {
			if r.err != nil && !errors.Is(r.err, io.EOF) {
				return "", r.err
			}
			return "", ErrCanceled
		}
		return dir, nil
	}
}
