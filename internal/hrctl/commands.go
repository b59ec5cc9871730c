package hrctl

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and keep the token for later commands",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, EnvVars: []string{"HRCTL_EMAIL"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"HRCTL_PASSWORD"}, Usage: "read from stdin when empty"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			password := c.String("password")
			if password == "" {
				var err error
				if password, err = readLine(c); err != nil {
					return cli.Exit("password is required", 2)
				}
			}

			res, err := e.store.Login(c.Context, apiclient.Credentials{
				Email:    c.String("email"),
				Password: password,
			})
			if err != nil {
				return e.actionError(err)
			}
			return e.print(c, newUserView(&res.User))
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "end the session and forget the token",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			e.store.Logout(c.Context)
			return e.print(c, message{Message: "logged out"})
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in user",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			if err := e.requireSession(); err != nil {
				return err
			}
			u := e.store.User()
			if u == nil {
				// Init failed for a reason other than an expired token.
				var err error
				if u, err = e.store.FetchUser(c.Context); err != nil {
					return e.actionError(err)
				}
			}
			return e.print(c, newUserView(u))
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "manage your profile",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "change profile fields, unset flags are left as they are",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "email"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					if err := e.requireSession(); err != nil {
						return err
					}
					data := apiclient.ProfileUpdate{
						Name:     c.String("name"),
						Username: c.String("username"),
						Email:    c.String("email"),
					}
					if data == (apiclient.ProfileUpdate{}) {
						return cli.Exit("nothing to update", 2)
					}
					u, err := e.store.UpdateProfile(c.Context, data)
					if err != nil {
						return e.actionError(err)
					}
					return e.print(c, newUserView(u))
				},
			},
		},
	}
}

func passwordCommand() *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "change, recover or reset a password",
		Subcommands: []*cli.Command{
			{
				Name:  "change",
				Usage: "change the password of the signed-in user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Required: true},
					&cli.StringFlag{Name: "new", Required: true},
					&cli.StringFlag{Name: "confirm"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					if err := e.requireSession(); err != nil {
						return err
					}
					err := e.store.ChangePassword(c.Context, apiclient.PasswordChange{
						CurrentPassword:      c.String("current"),
						Password:             c.String("new"),
						PasswordConfirmation: confirmation(c, "new"),
					})
					if err != nil {
						return e.actionError(err)
					}
					return e.print(c, message{Message: "password changed"})
				},
			},
			{
				Name:  "forgot",
				Usage: "request a password reset email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					if err := e.store.ForgotPassword(c.Context, c.String("email")); err != nil {
						return e.actionError(err)
					}
					return e.print(c, message{Message: "if the address is registered, a reset link is on its way"})
				},
			},
			{
				Name:  "reset",
				Usage: "set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "confirm"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					err := e.store.ResetPassword(c.Context, apiclient.PasswordReset{
						Token:                c.String("token"),
						Email:                c.String("email"),
						Password:             c.String("password"),
						PasswordConfirmation: confirmation(c, "password"),
					})
					if err != nil {
						return e.actionError(err)
					}
					return e.print(c, message{Message: "password reset, you can now log in"})
				},
			},
		},
	}
}

func navCommand() *cli.Command {
	return &cli.Command{
		Name:      "nav",
		Usage:     "show where the portal would take you for a path",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			if c.NArg() != 1 {
				return cli.Exit("usage: hrctl nav <path>", 2)
			}
			to, err := router.ParseLocation(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			d := e.router.Resolve(to, router.Location{}, e.store)
			return e.print(c, newNavView(to.FullPath(), d))
		},
	}
}

func routesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "list the portal routes",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			return e.print(c, newRouteList(e.router))
		},
	}
}

// confirmation returns --confirm, defaulting to the value of the named flag.
func confirmation(c *cli.Context, flag string) string {
	if v := c.String("confirm"); v != "" {
		return v
	}
	return c.String(flag)
}

func readLine(c *cli.Context) (string, error) {
	fmt.Fprint(c.App.ErrWriter, "Password: ")
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err == nil {
			err = fmt.Errorf("empty password")
		}
		return "", err
	}
	return line, nil
}
