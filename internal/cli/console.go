package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/utils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	candidateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// Console is the terminal implementation of sisyphus.UI
type Console struct {
	in  io.Reader
	out io.Writer

	// accessible prompts read plain lines instead of running a terminal form
	accessible bool

	indexBar     *progressbar.ProgressBar
	downloadBar  *progressbar.ProgressBar
	downloadName string
}

// NewConsole creates a console reading answers from in and writing to out
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{in: in, out: out}
	if !isTerminal(in) {
		c.accessible = true
		c.in = &lineReader{r: in}
	}
	return c
}

// IndexProgress updates the spinner shown while the listing is parsed
func (c *Console) IndexProgress(n int) {
	if c.indexBar == nil {
		c.indexBar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Чтение списка пакетов"),
			progressbar.OptionSetWriter(c.out),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("пакет"),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
	}
	_ = c.indexBar.Set(n)
}

// DownloadProgress renders a byte progress bar for the package being fetched
func (c *Console) DownloadProgress(name string, written, total int64) {
	if c.downloadBar == nil || c.downloadName != name {
		c.finishBars()
		size := "?"
		if total >= 0 {
			size = utils.FormatSize(total)
		}
		fmt.Fprintf(c.out, "Получение %s (%s)\n", name, size)

		c.downloadName = name
		c.downloadBar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("Скачивание "+name),
			progressbar.OptionSetWriter(c.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(c.out)
			}),
		)
	}
	_ = c.downloadBar.Set64(written)
}

// ShowCandidates prints the numbered candidate tree
func (c *Console) ShowCandidates(term string, candidates []models.Candidate) {
	c.finishBars()

	t := tree.Root(headerStyle.Render("Кандидаты пакета " + term))
	for _, cand := range candidates {
		t.Child(candidateStyle.Render(fmt.Sprintf("[%d] %s", cand.Index, cand.Display)))
	}
	fmt.Fprintln(c.out, t.String())
}

// ShowMetadata prints the package information block
func (c *Console) ShowMetadata(meta *models.Metadata) {
	c.finishBars()

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("Информация о пакете %s v%s (%s):", meta.Name, meta.Version, meta.Group)))
	c.field("Архитектура", meta.Arch)
	c.field("Краткое описание", meta.Summary)
	c.field("Описание", meta.Description)
	c.field("Размер пакета", utils.FormatSize(meta.Size))
	c.field("Размер архива", utils.FormatSize(meta.ArchiveSize))
}

// ShowDependencies prints one dependency per line
func (c *Console) ShowDependencies(deps []string) {
	c.finishBars()
	for _, dep := range deps {
		fmt.Fprintln(c.out, valueStyle.Render(dep))
	}
}

// Select asks for the number of a candidate
func (c *Console) Select(count int) (string, error) {
	c.finishBars()
	return c.prompt(fmt.Sprintf("Введите номер пакета-кандидата [0-%d]:", count-1))
}

// Confirm asks whether the package should be installed
func (c *Console) Confirm(name string) (string, error) {
	c.finishBars()
	return c.prompt(fmt.Sprintf("Установить пакет %s? (y/n)", name))
}

// Notice prints a highlighted informational line
func (c *Console) Notice(msg string) {
	c.finishBars()
	fmt.Fprintln(c.out, errorStyle.Render(msg))
}

// Success prints a confirmation line
func (c *Console) Success(msg string) {
	c.finishBars()
	fmt.Fprintln(c.out, successStyle.Render(msg))
}

// Info prints a plain line
func (c *Console) Info(msg string) {
	c.finishBars()
	fmt.Fprintln(c.out, msg)
}

func (c *Console) field(label, value string) {
	fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

// prompt asks question through a single-field form and returns the raw answer.
// An aborted form yields an empty answer.
func (c *Console) prompt(question string) (string, error) {
	var answer string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(question).
			Value(&answer),
	)).
		WithInput(c.in).
		WithOutput(c.out).
		WithAccessible(c.accessible).
		WithShowHelp(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimRight(answer, "\r\n"), nil
}

// finishBars closes any progress bar still drawing
func (c *Console) finishBars() {
	if c.indexBar != nil {
		_ = c.indexBar.Finish()
		fmt.Fprintln(c.out)
		c.indexBar = nil
	}
	if c.downloadBar != nil {
		if !c.downloadBar.IsFinished() {
			_ = c.downloadBar.Finish()
		}
		c.downloadBar = nil
		c.downloadName = ""
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// lineReader hands out at most one line per Read so that every prompt
// consumes exactly its own answer from a shared stream
type lineReader struct {
	r io.Reader
}

func (l *lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := l.r.Read(p[n : n+1])
		n += m
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if m == 1 && p[n-1] == '\n' {
			break
		}
	}
	return n, nil
}
