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

	"github.com/spf13/cobra"
)

func accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and fund participant balances",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "fund <amount>",
			Short: "Credit the --as participant, for development use",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				who, err := origin()
				if err != nil {
					return err
				}
				amount, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount: %w", err)
				}
				return withSession(cmd, func(s *session) error {
					return s.ls.Fund(who, amount)
				})
			},
		},
		&cobra.Command{
			Use:   "balance",
			Short: "Show the balance of the --as participant",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				who, err := origin()
				if err != nil {
					return err
				}
				return withSession(cmd, func(s *session) error {
					bal, err := s.ls.Balance(who)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", who.String(), bal)
					return nil
				})
			},
		},
	)
	return cmd
}

func blockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Inspect and advance the block height",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "advance",
			Short: "Advance the block height by one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(s *session) error {
					height, err := s.ls.AdvanceBlock()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), height)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "height",
			Short: "Show the current block height",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(s *session) error {
					fmt.Fprintln(cmd.OutOrStdout(), s.ls.CurrentHeight())
					return nil
				})
			},
		},
	)
	return cmd
}
