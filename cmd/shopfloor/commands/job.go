package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/jobimport"
	"github.com/joddb/shopfloor/internal/storage/io"
)

type JobImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file   string
	format string
}

// NewJobImportCommand returns the job import command.
func NewJobImportCommand(rootCmd *RootCommand, jobCmd *kingpin.CmdClause) *JobImportCommand {
	c := &JobImportCommand{rootCmd: rootCmd}

	c.Cmd = jobCmd.Command("import", "Import a job template (processes and standard times) from a YAML file.")
	c.Cmd.Arg("file", "Path to the job template YAML file.").Required().StringVar(&c.file)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c JobImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	path, err := filepath.Abs(c.file)
	if err != nil {
		return fmt.Errorf("could not resolve job file path: %w", err)
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := jobimport.NewService(jobimport.ServiceConfig{
		Repository: repo,
		Loader:     io.NewJobYAMLRepository(os.DirFS("/")),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	job, err := svc.Run(ctx, jobimport.Request{Path: path[1:]})
	if err != nil {
		return fmt.Errorf("could not import job: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintJob(*job); err != nil {
		return fmt.Errorf("could not print job: %w", err)
	}

	return nil
}
