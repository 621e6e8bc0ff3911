package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"

	"github.com/joddb/shopfloor/internal/api"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the REST API.")
	c.Cmd.Flag("listen", "Address the API listens on.").Default(":8080").StringVar(&c.listenAddr)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	if !c.rootCmd.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	th, err := c.rootCmd.Thresholds()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	srv, err := api.NewServer(api.ServerConfig{
		Repository: repo,
		Thresholds: th,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create api server: %w", err)
	}

	return srv.ListenAndServe(ctx, c.listenAddr)
}
