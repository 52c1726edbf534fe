package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"eventhub/client"
)

func main() {
	var serverURL string

	app := &cli.App{
		Name:  "eventctl",
		Usage: "Browse and manage eventhub events from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "Base URL of the eventhub API",
				Value:       "http://127.0.0.1:8080",
				EnvVars:     []string{"EVENTHUB_URL"},
				Destination: &serverURL,
			},
		},
		Commands: []*cli.Command{
			registerCmd(&serverURL),
			loginCmd(&serverURL),
			logoutCmd(&serverURL),
			whoamiCmd(&serverURL),
			profileCmd(&serverURL),
			eventsCmd(&serverURL),
			statsCmd(&serverURL),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "eventctl:", err)
		os.Exit(1)
	}
}

func newClient(serverURL *string) (*client.Client, *client.Session, error) {
	session, err := client.OpenSession()
	if err != nil {
		return nil, nil, err
	}
	return client.New(*serverURL, session), session, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runErr rewraps a 401 so the user gets a hint instead of a raw status line.
// The client already dropped the dead token by this point.
func runErr(err error) error {
	if client.IsAuthError(err) {
		return fmt.Errorf("session expired or invalid, please log in again: %w", err)
	}
	return err
}

func registerCmd(serverURL *string) *cli.Command {
	var name, email, password string
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true, Destination: &name},
			&cli.StringFlag{Name: "email", Required: true, Destination: &email},
			&cli.StringFlag{Name: "password", Required: true, Destination: &password},
		},
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(serverURL)
			if err != nil {
				return err
			}
			user, err := c.Register(cctx.Context, name, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("account created for %s (id %d), log in to continue\n", user.Email, user.ID)
			return nil
		},
	}
}

func loginCmd(serverURL *string) *cli.Command {
	var email, password string
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and persist the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Destination: &email},
			&cli.StringFlag{Name: "password", Required: true, Destination: &password},
		},
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(serverURL)
			if err != nil {
				return err
			}
			user, err := c.Login(cctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", user.Email)
			return nil
		},
	}
}

func logoutCmd(serverURL *string) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the persisted session token",
		Action: func(cctx *cli.Context) error {
			_, session, err := newClient(serverURL)
			if err != nil {
				return err
			}
			session.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd(serverURL *string) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the identity held in the local session, without calling the server",
		Action: func(cctx *cli.Context) error {
			_, session, err := newClient(serverURL)
			if err != nil {
				return err
			}
			user, ok := session.CurrentUser()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}

func profileCmd(serverURL *string) *cli.Command {
	var name string
	return &cli.Command{
		Name:  "profile",
		Usage: "Show the server-side profile",
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(serverURL)
			if err != nil {
				return err
			}
			user, err := c.Profile(cctx.Context)
			if err != nil {
				return runErr(err)
			}
			return printJSON(user)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Change the display name",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Destination: &name},
				},
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					user, err := c.UpdateProfile(cctx.Context, name)
					if err != nil {
						return runErr(err)
					}
					return printJSON(user)
				},
			},
		},
	}
}

func eventsCmd(serverURL *string) *cli.Command {
	var in client.EventInput
	var dateStr string

	eventFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Destination: &in.Title},
		&cli.StringFlag{Name: "description", Destination: &in.Description},
		&cli.StringFlag{Name: "date", Usage: "RFC3339, e.g. 2026-09-20T18:00:00Z", Destination: &dateStr},
		&cli.StringFlag{Name: "location", Destination: &in.Location},
		&cli.StringFlag{Name: "image-url", Destination: &in.ImageURL},
		&cli.StringFlag{Name: "category", Destination: &in.Category},
		&cli.IntFlag{Name: "max-attendees", Destination: &in.MaxAttendees},
		&cli.BoolFlag{Name: "published", Destination: &in.IsPublished},
	}
	parseDate := func() error {
		if dateStr == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return fmt.Errorf("bad --date: %w", err)
		}
		in.Date = t
		return nil
	}

	return &cli.Command{
		Name:  "events",
		Usage: "List and manage events",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List published events",
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					events, err := c.Events(cctx.Context)
					if err != nil {
						return err
					}
					return printJSON(events)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one event",
				ArgsUsage: "<event-id>",
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					event, err := c.Event(cctx.Context, cctx.Args().First())
					if err != nil {
						return err
					}
					return printJSON(event)
				},
			},
			{
				Name:  "create",
				Usage: "Create an event (you become the organizer)",
				Flags: eventFlags,
				Action: func(cctx *cli.Context) error {
					if err := parseDate(); err != nil {
						return err
					}
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					event, err := c.CreateEvent(cctx.Context, in)
					if err != nil {
						return runErr(err)
					}
					return printJSON(event)
				},
			},
			{
				Name:      "update",
				Usage:     "Update an event you organize",
				ArgsUsage: "<event-id>",
				Flags:     eventFlags,
				Action: func(cctx *cli.Context) error {
					if err := parseDate(); err != nil {
						return err
					}
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					event, err := c.UpdateEvent(cctx.Context, cctx.Args().First(), in)
					if err != nil {
						return runErr(err)
					}
					return printJSON(event)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an event you organize",
				ArgsUsage: "<event-id>",
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					if err := c.DeleteEvent(cctx.Context, cctx.Args().First()); err != nil {
						return runErr(err)
					}
					fmt.Println("event deleted")
					return nil
				},
			},
			{
				Name:      "attend",
				Usage:     "Register for an event",
				ArgsUsage: "<event-id>",
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					if err := c.Attend(cctx.Context, cctx.Args().First()); err != nil {
						return runErr(err)
					}
					fmt.Println("registered")
					return nil
				},
			},
			{
				Name:      "unattend",
				Usage:     "Cancel a registration",
				ArgsUsage: "<event-id>",
				Action: func(cctx *cli.Context) error {
					c, _, err := newClient(serverURL)
					if err != nil {
						return err
					}
					if err := c.Unattend(cctx.Context, cctx.Args().First()); err != nil {
						return runErr(err)
					}
					fmt.Println("registration cancelled")
					return nil
				},
			},
		},
	}
}

func statsCmd(serverURL *string) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show dashboard counts for your events",
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(serverURL)
			if err != nil {
				return err
			}
			stats, err := c.Stats(cctx.Context)
			if err != nil {
				return runErr(err)
			}
			return printJSON(stats)
		},
	}
}
