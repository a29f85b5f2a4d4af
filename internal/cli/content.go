package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

func newCommentCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add or list facility comments",
	}

	add := &cobra.Command{
		Use:   "add <place-id> <text...>",
		Short: "Comment on a facility",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sess, err := e.session()
			if err != nil {
				return err
			}
			c, err := a.Content.AddComment(cmd.Context(), sess, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return e.print(cmd, c, func(w io.Writer) {
				fmt.Fprintln(w, "Added comment", c.CommentID)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list <place-id>",
		Short: "List comments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			comments, err := a.Content.ListComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if comments == nil {
				comments = []*types.Comment{}
			}
			return e.print(cmd, comments, func(w io.Writer) {
				for _, c := range comments {
					fmt.Fprintf(w, "%s  %s: %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.Username, c.Content)
				}
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newCodeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Add or list facility access codes",
	}

	add := &cobra.Command{
		Use:   "add <place-id> <code>",
		Short: "Share an access code for a facility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sess, err := e.session()
			if err != nil {
				return err
			}
			c, err := a.Content.AddCode(cmd.Context(), sess, args[0], args[1])
			if err != nil {
				return err
			}
			return e.print(cmd, c, func(w io.Writer) {
				fmt.Fprintln(w, "Added code", c.CodeID)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list <place-id>",
		Short: "List codes ranked by votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			ranked, err := a.Content.RankedCodes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ranked == nil {
				ranked = []types.RankedCode{}
			}
			return e.print(cmd, ranked, func(w io.Writer) {
				for _, rc := range ranked {
					fmt.Fprintf(w, "%+d\t%s\t%s\t%s\n", rc.NetScore, rc.Code.Text, rc.Code.Username, rc.Code.CodeID)
				}
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newVoteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <code-id> <up|down>",
		Short: "Vote on an access code",
		Long: `Vote records an up or down vote on a code. Repeating the same vote
clears it; voting the other way flips it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			if _, ok := sess.User(); !ok {
				return types.ErrNotAuthenticated
			}
			vt, err := types.ParseVoteType(args[1])
			if err != nil {
				return err
			}

			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.Votes.CastVote(cmd.Context(), sess, args[0], vt)
			if err != nil {
				return err
			}
			return e.print(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s: now %s, net score %+d\n", res.Action, res.State, res.NetScore)
			})
		},
	}
}

func newNoteCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Keep a private note on a facility",
	}

	set := &cobra.Command{
		Use:   "set <place-id> <text...>",
		Short: "Write your note, replacing any previous one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sess, err := e.session()
			if err != nil {
				return err
			}
			n, err := a.Content.SetNote(cmd.Context(), sess, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return e.print(cmd, n, func(w io.Writer) {
				fmt.Fprintln(w, "Note saved")
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <place-id>",
		Short: "Show your note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sess, err := e.session()
			if err != nil {
				return err
			}
			n, err := a.Content.GetNote(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			return e.print(cmd, n, func(w io.Writer) {
				fmt.Fprintln(w, n.Content)
			})
		},
	}

	cmd.AddCommand(set, get)
	return cmd
}
