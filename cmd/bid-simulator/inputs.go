package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/ledgerio"
)

// submissionFlags selects where team submissions are read from
type submissionFlags struct {
	teams       []string // NAME=path entries, one per team file
	submissions string   // one long-format file with a Team Name column
}

func (f *submissionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.teams, "team", "t", nil, "team submission as NAME=path.csv (repeatable)")
	cmd.Flags().StringVarP(&f.submissions, "submissions", "s", "", "long-format CSV with Team Name, Name and Bid Amount($) columns")
}

// load reads submissions in flag order. Exactly one source must be given.
func (f *submissionFlags) load() ([]core.TeamSubmission, error) {
	switch {
	case len(f.teams) > 0 && f.submissions != "":
		return nil, errors.New("use either --team or --submissions, not both")
	case f.submissions != "":
		file, err := os.Open(f.submissions)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return ledgerio.ReadSubmissionsCSV(file)
	case len(f.teams) > 0:
		submissions := make([]core.TeamSubmission, 0, len(f.teams))
		for _, entry := range f.teams {
			name, path, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(name) == "" || path == "" {
				return nil, fmt.Errorf("invalid --team %q (want NAME=path.csv)", entry)
			}
			sub, err := readTeamFile(strings.TrimSpace(name), path)
			if err != nil {
				return nil, err
			}
			submissions = append(submissions, sub)
		}
		return submissions, nil
	default:
		return nil, errors.New("no submissions given (use --team NAME=path.csv or --submissions file.csv)")
	}
}

func readTeamFile(team, path string) (core.TeamSubmission, error) {
	file, err := os.Open(path)
	if err != nil {
		return core.TeamSubmission{}, err
	}
	defer file.Close()
	return ledgerio.ReadSubmissionCSV(file, team)
}

// createFile opens path for writing and hands it to write, closing it afterwards.
func createFile(path string, write func(f *os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
