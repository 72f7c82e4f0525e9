package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jo-hoe/imagerepo/internal/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const passwordEnv = "IMAGEREPO_PASSWORD"

type rootOptions struct {
	configPath string
	endpoint   string
	username   string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "imagerepo",
		Short:         "Store image files in a relational database",
		Long:          `Connects to a MySQL, PostgreSQL or SQLite database, ensures the images table exists and inserts image files as blobs captioned with their file name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	root.PersistentFlags().StringVarP(&opts.endpoint, "endpoint", "e", "", "database URL, e.g. jdbc:mysql://localhost:3306/imagerepo")
	root.PersistentFlags().StringVarP(&opts.username, "user", "u", "", "database username")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInitCommand(opts),
		newAddCommand(opts),
		newAddAllCommand(opts),
		newListCommand(opts),
		newDeleteCommand(opts),
	)
	return root
}

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Connect and create the images table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, opts, func(ctx context.Context, svc *core.CoreService) error {
				return nil
			})
		},
	}
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Insert a single image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, opts, func(ctx context.Context, svc *core.CoreService) error {
				id, err := svc.AddImage(ctx, args[0])
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "id: %d\n", id)
				}
				return err
			})
		},
	}
}

func newAddAllCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-all <folder>",
		Short: "Insert every file directly inside a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, opts, func(ctx context.Context, svc *core.CoreService) error {
				result, err := svc.AddAllImages(ctx, args[0])
				if result != nil {
					out := cmd.OutOrStdout()
					for _, image := range result.Inserted {
						fmt.Fprintf(out, "added %d\t%s\n", image.ID, image.Caption)
					}
					for _, failure := range result.Failed {
						fmt.Fprintf(out, "failed\t%s\t%s\n", failure.Name, failure.Error)
					}
					for _, name := range result.Skipped {
						fmt.Fprintf(out, "skipped\t%s\n", name)
					}
				}
				return err
			})
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCoreService(cmd, opts, func(ctx context.Context, svc *core.CoreService) error {
				images, err := svc.ListImages(ctx)
				if err != nil {
					return err
				}
				for _, image := range images {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", image.ID, image.Size, image.Caption)
				}
				return nil
			})
		},
	}
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q: %w", args[0], err)
			}
			return withCoreService(cmd, opts, func(ctx context.Context, svc *core.CoreService) error {
				return svc.DeleteImage(ctx, id)
			})
		},
	}
}

// withCoreService connects, ensures the images table, runs fn and prints the
// resulting status line.
func withCoreService(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, svc *core.CoreService) error) error {
	config, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	svc := core.NewCoreService(config)
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("failed to close session", "error", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	username := opts.username
	if username == "" {
		username = config.Database.Username
	}
	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), username)
	if err != nil {
		return err
	}

	if err := svc.Connect(ctx, opts.endpoint, username, password); err != nil {
		return printStatus(cmd, svc, err)
	}
	if err := svc.EnsureSchema(ctx); err != nil && !errors.Is(err, core.ErrSchemaAlreadyExists) {
		return printStatus(cmd, svc, err)
	}

	return printStatus(cmd, svc, fn(ctx, svc))
}

func printStatus(cmd *cobra.Command, svc *core.CoreService, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Status:", svc.Status().Message)
	return err
}

func loadConfig(path string) (*core.ServiceConfig, error) {
	if path == "" {
		return core.LoadConfigFromEnv()
	}
	return core.LoadConfig(path)
}

// readPassword takes the password from IMAGEREPO_PASSWORD or prompts for it
// when a username is set and stdin is a terminal.
func readPassword(in io.Reader, prompt io.Writer, username string) (string, error) {
	if password, ok := os.LookupEnv(passwordEnv); ok {
		return password, nil
	}
	if username == "" {
		return "", nil
	}

	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", nil
	}

	fmt.Fprintf(prompt, "Password for %s: ", username)
	password, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(string(password), "\r\n"), nil
}
