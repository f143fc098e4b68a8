// This is the main entry point of the todograph application.
// It's responsible for loading configuration, building the fixture store,
// the services and the GraphQL schema, and starting the HTTP server.
// It also handles graceful shutdown.
//
// Two commands are available:
//
//	todograph serve [--port 3000]   start the GraphQL server (default)
//	todograph token --name Alice    print a token signed for a user
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	// `godotenv` loads environment variables from a .env file, useful for development.
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/todograph-go/auth"
	"github.com/user/todograph-go/config"
	"github.com/user/todograph-go/graph"
	"github.com/user/todograph-go/logging"
	"github.com/user/todograph-go/server"
	"github.com/user/todograph-go/store"
	"github.com/user/todograph-go/users"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("todograph: %v", err)
	}
}

func newApp() *cli.App {
	serveCmd := &cli.Command{
		Name:  "serve",
		Usage: "start the GraphQL server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port (overrides PORT)"},
		},
		Action: serve,
	}

	return &cli.App{
		Name:  "todograph",
		Usage: "GraphQL todo service backed by an in-memory fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
		},
		Before: loadEnvFile,
		Commands: []*cli.Command{
			serveCmd,
			{
				Name:  "token",
				Usage: "print a token signed for a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "user name carried by the token"},
				},
				Action: printToken,
			},
		},
		// Running without a command serves, like the tutorial did.
		Action: serve,
	}
}

// loadEnvFile loads the dotenv file. A missing file is not an error.
func loadEnvFile(c *cli.Context) error {
	if err := godotenv.Load(c.String("env-file")); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", c.String("env-file"), err)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	// The store is created once and shared by reference; nothing else keeps a copy of the data.
	st, err := store.Open(cfg.Store.FixturePath)
	if err != nil {
		return err
	}
	userService := users.NewService(st)
	tokens := auth.NewTokenService(*cfg.Auth)

	schema, err := graph.Build(graph.Services{
		Users:  userService,
		Todos:  st,
		Gate:   auth.NewGate(tokens, userService),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, schema, tokens, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("up and running",
		zap.String("graphql", "http://localhost"+cfg.Server.Addr()+"/graphql"),
		zap.Bool("graphiql", cfg.GraphQL.GraphiQLEnabled))
	return srv.Run(ctx)
}

func printToken(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.FixturePath)
	if err != nil {
		return err
	}

	name := c.String("name")
	if _, ok := users.NewService(st).Find(name); !ok {
		fmt.Fprintf(c.App.ErrWriter, "warning: %q is not a known user, viewer will resolve to null\n", name)
	}

	token, err := auth.NewTokenService(*cfg.Auth).Sign(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
