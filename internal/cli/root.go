// Package cli implements the restroom command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/restroom/internal/app"
	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/internal/logging"
	"github.com/mesh-intelligence/restroom/internal/paths"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// env is the state one invocation shares between its commands.
type env struct {
	flags     rootFlags
	configDir string
	dataDir   string
	v         *viper.Viper
	log       *logging.Logger
}

// sysError marks failures of the environment rather than of the request.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

func systemErr(format string, args ...any) error {
	return sysError{fmt.Errorf(format, args...)}
}

// NewRootCmd creates the top-level "restroom" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "restroom",
		Short: "Find restrooms and share access codes",
		Long: "Restroom keeps a local store of facilities with community comments\n" +
			"and access codes ranked by votes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.log.Close()
		},
	}

	root.PersistentFlags().StringVar(&e.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&e.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.restroom)")
	root.PersistentFlags().BoolVar(&e.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(e),
		newSignUpCmd(e),
		newLogInCmd(e),
		newLogOutCmd(e),
		newWhoAmICmd(e),
		newIngestCmd(e),
		newFacilitiesCmd(e),
		newNearestCmd(e),
		newCommentCmd(e),
		newCodeCmd(e),
		newVoteCmd(e),
		newNoteCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newServeCmd(e),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var se sysError
	if errors.As(err, &se) || errors.Is(err, types.ErrStorageFailure) {
		return exitSysError
	}
	return exitUserError
}

// setup resolves directories, loads .env and config.yaml, and builds the
// logger. It runs before every subcommand.
func (e *env) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(e.flags.configDir)
	if err != nil {
		return systemErr("resolve config dir: %w", err)
	}
	if err := loadDotEnv(configDir); err != nil {
		return systemErr("load .env: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return systemErr("load config: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(e.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return systemErr("resolve data dir: %w", err)
	}
	log, err := logging.New(logging.Options{
		Level:  v.GetString(cfgKeyLogLevel),
		Format: v.GetString(cfgKeyLogFormat),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return systemErr("logger: %w", err)
	}

	e.configDir, e.dataDir, e.v, e.log = configDir, dataDir, v, log
	return nil
}

// open attaches the store and builds the services. The caller must Close.
func (e *env) open() (*app.App, error) {
	a, err := app.Open(settingsFrom(e.v, e.dataDir), e.log.Logger)
	if err != nil {
		return nil, systemErr("%w", err)
	}
	return a, nil
}

// session returns the persisted CLI session.
func (e *env) session() (*auth.Session, error) {
	name, err := readSession(paths.SessionFile(e.dataDir))
	if err != nil {
		return nil, systemErr("read session: %w", err)
	}
	return auth.NewSession(name), nil
}

// saveSession persists sess for later invocations.
func (e *env) saveSession(sess *auth.Session) error {
	name, _ := sess.User()
	if err := writeSession(paths.SessionFile(e.dataDir), name); err != nil {
		return systemErr("write session: %w", err)
	}
	return nil
}

// print writes v as indented JSON in --json mode and as text otherwise.
func (e *env) print(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if e.flags.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
