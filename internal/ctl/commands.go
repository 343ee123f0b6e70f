package ctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/attach"
	"github.com/matheus3301/chatterm/internal/lock"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/store"
)

// PasswordEnv supplies the login password when --password is not given.
const PasswordEnv = "CHATTERM_PASSWORD"

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session cookie",
		Long: `Sign in with email and password. The password is taken from --password,
then $CHATTERM_PASSWORD, then the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("email and password are required")
			}
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				u, err := e.client.Login(ctx, email, password)
				if err != nil {
					return userFailure(err, "Login failed")
				}
				if err := e.db.SetPref(store.PrefLastEmail, email); err != nil {
					return err
				}
				return e.printUser(u)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				if err := e.client.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
					return userFailure(err, "Logout failed")
				}
				if err := e.jar.Clear(); err != nil {
					return err
				}
				return e.printStatus("logged out")
			})
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				u, err := e.client.CheckAuth(ctx)
				if err != nil {
					if api.IsUnauthorized(err) {
						return &userError{msg: "not signed in, run chatctl login", err: err}
					}
					return err
				}
				return e.printUser(u)
			})
		},
	}
}

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users you can message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				users, err := e.client.ListUsers(ctx)
				if err != nil {
					return userFailure(err, "Failed to load users")
				}
				return e.printUsers(users)
			})
		},
	}
}

func newMessagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <user>",
		Short: "Show the conversation with a user (id, email or name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				users, err := e.client.ListUsers(ctx)
				if err != nil {
					return userFailure(err, "Failed to load users")
				}
				u, err := resolveUser(users, args[0])
				if err != nil {
					return err
				}
				me, err := e.client.CheckAuth(ctx)
				if err != nil {
					return err
				}
				msgs, err := e.client.ListMessages(ctx, u.ID)
				if err != nil {
					return userFailure(err, "Failed to load messages")
				}
				return e.printMessages(msgs, me.ID, u)
			})
		},
	}
}

func newSendCmd(opts *options) *cobra.Command {
	var image string
	cmd := &cobra.Command{
		Use:   "send <user> [text...]",
		Short: "Send a message to a user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(args[1:], image)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				users, err := e.client.ListUsers(ctx)
				if err != nil {
					return userFailure(err, "Failed to load users")
				}
				u, err := resolveUser(users, args[0])
				if err != nil {
					return err
				}
				m, err := e.client.SendMessage(ctx, u.ID, draft)
				if err != nil {
					return userFailure(err, "Failed to send message")
				}
				if e.json {
					return e.writeJSON(m)
				}
				return e.printStatus("sent " + m.ID)
			})
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "attach an image file")
	return cmd
}

func newGroupsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List your groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				groups, err := e.client.ListGroups(ctx)
				if err != nil {
					return userFailure(err, "Failed to load groups")
				}
				return e.printGroups(groups)
			})
		},
	}
}

func newGroupCmd(opts *options) *cobra.Command {
	group := &cobra.Command{
		Use:   "group",
		Short: "Create groups and read or post group messages",
	}

	var members []string
	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group with the given members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" || len(members) == 0 {
				return errors.New("group needs a name and at least one --member")
			}
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				users, err := e.client.ListUsers(ctx)
				if err != nil {
					return userFailure(err, "Failed to load users")
				}
				ids := make([]string, 0, len(members))
				for _, m := range members {
					u, err := resolveUser(users, m)
					if err != nil {
						return err
					}
					ids = append(ids, u.ID)
				}
				g, err := e.client.CreateGroup(ctx, api.CreateGroupRequest{
					Name:        strings.TrimSpace(args[0]),
					Description: description,
					Members:     ids,
				})
				if err != nil {
					return userFailure(err, "Failed to create group")
				}
				if e.json {
					return e.writeJSON(g)
				}
				return e.printStatus(fmt.Sprintf("created group %s (%s)", g.Name, g.ID))
			})
		},
	}
	create.Flags().StringArrayVar(&members, "member", nil, "member id, email or name (repeatable)")
	create.Flags().StringVar(&description, "description", "", "group description")

	messages := &cobra.Command{
		Use:   "messages <group>",
		Short: "Show a group's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				g, err := e.findGroup(ctx, args[0])
				if err != nil {
					return err
				}
				me, err := e.client.CheckAuth(ctx)
				if err != nil {
					return err
				}
				msgs, err := e.client.ListGroupMessages(ctx, g.ID)
				if err != nil {
					return userFailure(err, "Failed to load group messages")
				}
				return e.printGroupMessages(msgs, me.ID)
			})
		},
	}

	var image string
	send := &cobra.Command{
		Use:   "send <group> [text...]",
		Short: "Post a message to a group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(args[1:], image)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, e *env) error {
				g, err := e.findGroup(ctx, args[0])
				if err != nil {
					return err
				}
				m, err := e.client.SendGroupMessage(ctx, g.ID, draft)
				if err != nil {
					return userFailure(err, "Failed to send message")
				}
				if e.json {
					return e.writeJSON(m)
				}
				return e.printStatus("sent " + m.ID)
			})
		},
	}
	send.Flags().StringVar(&image, "image", "", "attach an image file")

	group.AddCommand(create, messages, send)
	return group
}

func newProfilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List known profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := profile.List()
			if err != nil {
				return err
			}
			current := profile.Resolve(opts.profile)
			rows := make([]profileRow, 0, len(names))
			for _, n := range names {
				rows = append(rows, profileRow{
					Name:    n,
					Current: n == current,
					PID:     lock.Holder(profile.Dir(n)),
				})
			}
			e := &env{out: cmd.OutOrStdout(), json: opts.json}
			return e.printProfiles(rows)
		},
	}
}

// userError shows the server's message (or a fallback) but keeps the
// underlying error for errors.Is and errors.As.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func userFailure(err error, fallback string) error {
	return &userError{msg: api.UserMessage(err, fallback), err: err}
}

func (e *env) findGroup(ctx context.Context, query string) (*api.Group, error) {
	groups, err := e.client.ListGroups(ctx)
	if err != nil {
		return nil, userFailure(err, "Failed to load groups")
	}
	return resolveGroup(groups, query)
}

// buildDraft joins words into the message text and loads an optional image.
func buildDraft(words []string, imagePath string) (api.Draft, error) {
	d := api.Draft{Text: strings.TrimSpace(strings.Join(words, " "))}
	if imagePath != "" {
		img, err := attach.Load(imagePath)
		if err != nil {
			return api.Draft{}, err
		}
		d.Image = img.DataURL
	}
	if d.Empty() {
		return api.Draft{}, errors.New("nothing to send: give text or --image")
	}
	return d, nil
}

// resolveUser matches query against id, then email, then full name.
func resolveUser(users []api.User, query string) (*api.User, error) {
	q := strings.TrimSpace(query)
	for i := range users {
		if users[i].ID == q {
			return &users[i], nil
		}
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, q) {
			return &users[i], nil
		}
	}
	var found []*api.User
	for i := range users {
		if strings.EqualFold(users[i].FullName, q) {
			found = append(found, &users[i])
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no user matches %q", query)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%d users are named %q, use an id or email", len(found), query)
	}
}

// resolveGroup matches query against id, then name.
func resolveGroup(groups []api.Group, query string) (*api.Group, error) {
	q := strings.TrimSpace(query)
	for i := range groups {
		if groups[i].ID == q {
			return &groups[i], nil
		}
	}
	var found []*api.Group
	for i := range groups {
		if strings.EqualFold(groups[i].Name, q) {
			found = append(found, &groups[i])
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no group matches %q", query)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%d groups are named %q, use an id", len(found), query)
	}
}
