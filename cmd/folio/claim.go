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

	"github.com/blinklabs-io/folio/internal/config"
	"github.com/blinklabs-io/folio/ledger"
	"github.com/spf13/cobra"
)

func claimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Create, revoke and transfer claims",
	}
	cmd.AddCommand(
		claimCallCommand("create <key>", "Claim a key", 1, func(args []string, key []byte) ledger.Call {
			return ledger.CreateClaimCall{Key: key}
		}),
		claimCallCommand("revoke <key>", "Revoke a claim you own", 1, func(args []string, key []byte) ledger.Call {
			return ledger.RevokeClaimCall{Key: key}
		}),
		claimCallCommand("transfer <new-owner> <key>", "Transfer a claim you own", 2, func(args []string, key []byte) ledger.Call {
			return ledger.TransferClaimCall{
				NewOwner: config.ResolveParticipant(args[0]),
				Key:      key,
			}
		}),
		claimShowCommand(),
		claimListCommand(),
	)
	return cmd
}

// claimCallCommand builds a subcommand whose last argument is the claim key
func claimCallCommand(
	use string,
	short string,
	nargs int,
	buildCall func(args []string, key []byte) ledger.Call,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := origin()
			if err != nil {
				return err
			}
			key, err := parseClaimKey(args[len(args)-1])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				result, err := s.ls.Dispatch(caller, buildCall(args, key))
				if err != nil {
					return err
				}
				printEvents(cmd.ErrOrStderr(), result.Events)
				return nil
			})
		},
	}
}

func claimShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show the owner of a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseClaimKey(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				c, err := s.ls.Claim(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s owner=%s height=%d\n",
					formatClaimKey(key),
					c.Owner.String(),
					c.CreatedAt,
				)
				return nil
			})
		},
	}
}

func claimListCommand() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims held by an owner (defaults to --as)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner != "" {
				globalFlags.as = owner
			}
			who, err := origin()
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				owned, err := s.ls.ClaimsByOwner(who)
				if err != nil {
					return err
				}
				for _, c := range owned {
					fmt.Fprintf(
						cmd.OutOrStdout(),
						"%s height=%d\n",
						formatClaimKey(c.Key),
						c.Claim.CreatedAt,
					)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner name or participant id")
	return cmd
}
