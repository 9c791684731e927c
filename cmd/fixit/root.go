package main

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campus-fixit/issue-service/pkg/client"
)

// serverEnv is also accepted as FIXIT_SERVER.
const serverEnv = "FIXIT_API_BASE_URL"

type cli struct {
	out io.Writer
	v   *viper.Viper

	server  string
	session string
	timeout time.Duration
	color   bool

	// store overrides the session file, used by tests.
	store  client.TokenStore
	client *client.Client
}

func newRootCmd(out io.Writer, store client.TokenStore) *cobra.Command {
	app := &cli{out: out, v: viper.New(), store: store}

	root := &cobra.Command{
		Use:           "fixit",
		Short:         "Report and track campus facility issues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("server", client.DefaultBaseURL, "API base URL (env "+serverEnv+")")
	flags.String("session", "", "session file (default ~/.fixit/session.json)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Bool("color", false, "colour issue statuses")

	app.v.SetEnvPrefix("FIXIT")
	app.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	app.v.AutomaticEnv()
	_ = app.v.BindEnv("server", serverEnv, "FIXIT_SERVER")
	for _, key := range []string{"server", "session", "timeout", "color"} {
		_ = app.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.issuesCmd(),
		app.adminCmd(),
	)
	return root
}

func (a *cli) init() error {
	a.server = a.v.GetString("server")
	a.session = a.v.GetString("session")
	a.timeout = a.v.GetDuration("timeout")
	a.color = a.v.GetBool("color")

	if a.store == nil {
		path := a.session
		if path == "" {
			var err error
			if path, err = client.DefaultSessionPath(); err != nil {
				return err
			}
		}
		a.store = client.NewFileTokenStore(path)
	}
	a.client = client.New(client.Config{
		BaseURL: a.server,
		Timeout: a.timeout,
		Tokens:  a.store,
	})
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `fixit login` first")

// requireSession returns the stored session or errNotLoggedIn.
func (a *cli) requireSession() (*client.Session, error) {
	session, err := a.client.Session()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errNotLoggedIn
	}
	if session.Expired(time.Now()) {
		_ = a.client.Logout()
		return nil, errors.New("session expired, run `fixit login` again")
	}
	return session, nil
}
