package repo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hadespm/hades/internal/models"
)

// releaseTag matches the ALT release suffix, e.g. "-alt1" or "-alt3-1"
var releaseTag = regexp.MustCompile(`-alt\d+[-\d]*`)

// Match returns every index entry whose name contains term, ignoring case.
// Candidates keep index order. No matches yields an empty slice and no error.
func Match(index []string, term, suffix string) ([]models.Candidate, error) {
	needle := strings.ToLower(term)
	candidates := []models.Candidate{}

	for _, file := range index {
		if !strings.Contains(strings.ToLower(file), needle) {
			continue
		}

		display, err := DisplayName(file, suffix)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, models.Candidate{
			Index:   len(candidates),
			File:    file,
			Display: display,
		})
	}

	return candidates, nil
}

// DisplayName strips suffix and the first release tag from file.
// Every package in the repository carries a release tag; a name without one
// is reported as a parse error.
func DisplayName(file, suffix string) (string, error) {
	loc := releaseTag.FindStringIndex(file)
	if loc == nil {
		return "", &models.HadesError{
			Type:    models.ErrParse,
			Package: file,
			Err:     fmt.Errorf("no release tag in file name"),
		}
	}

	name := file[:loc[0]] + file[loc[1]:]
	return strings.TrimSuffix(name, suffix), nil
}
