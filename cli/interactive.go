package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"weatherscreen/manager"
	"weatherscreen/render"
)

const interactiveHelp = `Type to search; every line replaces the search text.
  :N   select suggestion N
  :/   show or hide the search box
  :@   use the current location
  :q   quit`

func newInteractive(factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Args:  cobra.NoArgs,
		Short: "Run the screen, redrawing on every change",
		Long:  interactiveHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, factory)
		},
	}
}

func runInteractive(cmd *cobra.Command, factory Factory) error {
	out := cmd.OutOrStdout()

	redraw := func(vs manager.ViewState) {
		fmt.Fprintln(out, strings.Repeat("=", 40))
		if err := render.Screen(out, vs); err != nil {
			slog.Warn("render", "error", err)
		}
	}

	m, release, err := factory(cmd, manager.WithOnChange(redraw))
	if err != nil {
		return err
	}
	defer release()

	s := &session{manager: m, ctx: cmd.Context()}
	defer s.wait()
	defer m.Close()

	fmt.Fprintln(out, interactiveHelp)
	s.goRun("resolve", m.Resolve)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if quit := s.handle(scanner.Text()); quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// session runs workflows in the background the way a UI would, so input
// keeps flowing while a fetch is in progress.
type session struct {
	manager *manager.Manager
	ctx     context.Context
	wg      sync.WaitGroup
}

func (s *session) handle(line string) bool {
	if !strings.HasPrefix(line, ":") {
		s.manager.Search(line)
		return false
	}

	switch command := strings.TrimPrefix(line, ":"); command {
	case "q":
		return true
	case "/":
		s.manager.ToggleSearch()
	case "@":
		s.goRun("locate", s.manager.LocateDevice)
	default:
		n, err := strconv.Atoi(command)
		if err != nil {
			slog.Warn("unknown command", "command", line)
			return false
		}

		suggestions := s.manager.Snapshot().Suggestions
		if n < 1 || n > len(suggestions) {
			slog.Warn("no such suggestion", "n", n, "available", len(suggestions))
			return false
		}

		loc := suggestions[n-1]
		s.goRun("select", func(ctx context.Context) error {
			return s.manager.Select(ctx, loc)
		})
	}

	return false
}

func (s *session) goRun(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		err := fn(s.ctx)
		switch {
		case err == nil:
		case errors.Is(err, manager.ErrPermissionDenied), errors.Is(err, context.Canceled), errors.Is(err, manager.ErrClosed):
			slog.Debug(name+" stopped", "error", err)
		default:
			slog.Error(name+" failed", "error", err)
		}
	}()
}

func (s *session) wait() {
	s.wg.Wait()
}
