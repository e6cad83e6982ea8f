// Package sisyphus drives the refresh, search and install commands against
// the ALT Sisyphus repository.
package sisyphus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hadespm/hades/internal/archive"
	"github.com/hadespm/hades/internal/install"
	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/repo"
	"github.com/hadespm/hades/internal/utils"
	"github.com/sirupsen/logrus"
)

// UI is the console collaborator: progress hooks, rendering and prompts
type UI interface {
	IndexProgress(n int)
	DownloadProgress(name string, written, total int64)
	ShowCandidates(term string, candidates []models.Candidate)
	ShowMetadata(meta *models.Metadata)
	ShowDependencies(deps []string)
	// Select asks for a candidate number and returns the raw answer
	Select(count int) (string, error)
	// Confirm asks whether to install name and returns the raw answer
	Confirm(name string) (string, error)
	Notice(msg string)
	Success(msg string)
}

// Sisyphus owns the repository configuration and the in-memory package index
type Sisyphus struct {
	cfg       models.Config
	client    *repo.Client
	ui        UI
	elevator  install.Elevator
	installer install.Installer

	index   []string
	fetched bool
	// elevated is set once the elevator has succeeded
	elevated bool
}

// New creates an orchestrator for cfg
func New(cfg models.Config, ui UI, elevator install.Elevator, installer install.Installer) *Sisyphus {
	return &Sisyphus{
		cfg:       cfg,
		client:    repo.NewClient(cfg.Timeout),
		ui:        ui,
		elevator:  elevator,
		installer: installer,
	}
}

// URL returns the repository base URL
func (s *Sisyphus) URL() string {
	return s.cfg.BaseURL()
}

// Refresh fetches the package index and returns the number of entries
func (s *Sisyphus) Refresh(ctx context.Context) (int, error) {
	index, err := s.ensureIndex(ctx)
	if err != nil {
		return 0, err
	}
	return len(index), nil
}

// Search lists and renders the candidates matching term.
// No match is not an error: an empty slice is returned.
func (s *Sisyphus) Search(ctx context.Context, term string) ([]models.Candidate, error) {
	candidates, err := s.match(ctx, term)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		s.ui.Notice("Пакетов не найдено")
		return candidates, nil
	}

	s.ui.ShowCandidates(term, candidates)
	return candidates, nil
}

// Install resolves term to a single package, downloads and inspects it, and
// installs it once the user confirms. ErrCancelled is returned when the user
// declines.
func (s *Sisyphus) Install(ctx context.Context, term string) error {
	candidates, err := s.match(ctx, term)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		return models.NewError(models.ErrNotFound, term, fmt.Errorf("пакетов с названием %s не найдено", term))
	}

	s.ui.ShowCandidates(term, candidates)

	chosen := candidates[0]
	if len(candidates) > 1 {
		chosen, err = s.choose(candidates)
		if err != nil {
			return err
		}
	}

	logrus.Debugf("Installing candidate %d: %s", chosen.Index, chosen.File)
	return s.installFile(ctx, chosen.File)
}

// ensureIndex fetches the index on first use and returns the cached copy afterwards
func (s *Sisyphus) ensureIndex(ctx context.Context) ([]string, error) {
	if s.fetched {
		return s.index, nil
	}

	index, err := repo.FetchIndex(ctx, s.client, s.URL(), s.ui.IndexProgress)
	if err != nil {
		return nil, err
	}

	s.index = index
	s.fetched = true
	logrus.Debugf("Cached %d index entries", len(index))
	return s.index, nil
}

func (s *Sisyphus) match(ctx context.Context, term string) ([]models.Candidate, error) {
	index, err := s.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Match(index, term, s.cfg.PackageSuffix())
}

// choose prompts for a candidate number. Anything but an in-range decimal
// number is a usage error; there is no second prompt.
func (s *Sisyphus) choose(candidates []models.Candidate) (models.Candidate, error) {
	answer, err := s.ui.Select(len(candidates))
	if err != nil {
		return models.Candidate{}, &models.HadesError{Type: models.ErrUsage, Err: fmt.Errorf("reading selection: %w", err)}
	}

	answer = strings.TrimSpace(answer)
	if !isDigits(answer) {
		return models.Candidate{}, &models.HadesError{
			Type: models.ErrUsage,
			Err:  fmt.Errorf("%q is not a candidate number", answer),
		}
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 0 || n >= len(candidates) {
		return models.Candidate{}, &models.HadesError{
			Type: models.ErrUsage,
			Err:  fmt.Errorf("candidate %s not found", answer),
		}
	}
	return candidates[n], nil
}

func (s *Sisyphus) installFile(ctx context.Context, file string) error {
	// Privileges are only needed up front for a protected download directory
	if !utils.DirWritable(s.cfg.DownloadDir) {
		logrus.Debugf("%s is not writable, elevating before download", s.cfg.DownloadDir)
		if err := s.elevate(); err != nil {
			return err
		}
	}

	dest := filepath.Join(s.cfg.DownloadDir, file)
	url := s.URL() + "/" + file
	if _, err := repo.Download(ctx, s.client, url, dest, func(written, total int64) {
		s.ui.DownloadProgress(file, written, total)
	}); err != nil {
		return err
	}

	meta, err := archive.Inspect(dest)
	if err != nil {
		return err
	}
	s.ui.ShowMetadata(meta)

	if !s.cfg.AssumeYes {
		answer, err := s.ui.Confirm(meta.Name)
		if err != nil {
			return &models.HadesError{Type: models.ErrUsage, Err: fmt.Errorf("reading confirmation: %w", err)}
		}
		if !IsAffirmative(answer) {
			return models.ErrCancelled
		}
	}

	deps, err := s.installer.Requires(ctx, dest)
	if err != nil {
		return err
	}
	s.ui.ShowDependencies(deps)

	if err := s.elevate(); err != nil {
		return err
	}
	if err := s.installer.Extract(ctx, dest, s.cfg.ExtractDir); err != nil {
		return err
	}

	s.ui.Success(fmt.Sprintf("Пакет %s успешно установлен", meta.Name))
	return nil
}

// elevate asks the elevator for privileges until it has succeeded once
func (s *Sisyphus) elevate() error {
	if s.elevated {
		return nil
	}
	if err := s.elevator.EnsureElevated(); err != nil {
		var he *models.HadesError
		if errors.As(err, &he) {
			return err
		}
		return &models.HadesError{Type: models.ErrElevation, Err: err}
	}
	s.elevated = true
	return nil
}

// IsAffirmative reports whether a confirmation answer means yes. Answers
// starting with Latin or Cyrillic "n" are negative, as is an empty answer.
func IsAffirmative(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	switch []rune(strings.ToLower(answer))[0] {
	case 'n', 'н':
		return false
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
