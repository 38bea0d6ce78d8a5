// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strconv"

	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/ledger"
	"github.com/spf13/cobra"
)

func postCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create, comment on and tip posts",
	}
	cmd.AddCommand(
		postCreateCommand(),
		postCommentCommand(),
		postTipCommand(),
		postShowCommand(),
		postListCommand(),
	)
	return cmd
}

func postCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <content>",
		Short: "Create a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := origin()
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				result, err := s.ls.Dispatch(author, ledger.CreatePostCall{Content: []byte(args[0])})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.PostId.String())
				printEvents(cmd.ErrOrStderr(), result.Events)
				return nil
			})
		},
	}
}

func postCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <content>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := origin()
			if err != nil {
				return err
			}
			postId, err := content.ParsePostId(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				result, err := s.ls.Dispatch(author, ledger.AddCommentCall{
					PostId:  postId,
					Content: []byte(args[1]),
				})
				if err != nil {
					return err
				}
				printEvents(cmd.ErrOrStderr(), result.Events)
				return nil
			})
		},
	}
}

func postTipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tip <post-id> <amount>",
		Short: "Tip the author of a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tipper, err := origin()
			if err != nil {
				return err
			}
			postId, err := content.ParsePostId(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			return withSession(cmd, func(s *session) error {
				result, err := s.ls.Dispatch(tipper, ledger.TipPostCall{
					PostId: postId,
					Amount: amount,
				})
				if err != nil {
					return err
				}
				printEvents(cmd.ErrOrStderr(), result.Events)
				return nil
			})
		},
	}
}

func postShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postId, err := content.ParsePostId(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				post, err := s.ls.Post(postId)
				if err != nil {
					return err
				}
				comments, err := s.ls.Comments(postId)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "post %s by %s\n", postId.String(), post.Author.String())
				fmt.Fprintf(out, "  %s\n", post.Content)
				for i, c := range comments {
					fmt.Fprintf(out, "comment %d by %s\n  %s\n", i, c.Author.String(), c.Content)
				}
				return nil
			})
		},
	}
}

func postListCommand() *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts by an author (defaults to --as)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if author != "" {
				globalFlags.as = author
			}
			who, err := origin()
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				posts, err := s.ls.PostsByAuthor(who)
				if err != nil {
					return err
				}
				for _, p := range posts {
					fmt.Fprintf(
						cmd.OutOrStdout(),
						"%s height=%d comments=%d\n",
						p.PostId.String(),
						p.AddedHeight,
						p.CommentCount,
					)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author name or participant id")
	return cmd
}
