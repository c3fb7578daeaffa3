// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/tokbridge/internal/credential"
	"github.com/ManuGH/tokbridge/internal/opentok"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Manage sessions"}

	var props opentok.SessionProperties
	var p2p bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a session and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("p2p") {
				props.P2PPreference = opentok.P2PDisabled
				if p2p {
					props.P2PPreference = opentok.P2PEnabled
				}
			}
			id, err := client.CreateSession(cmd.Context(), &props)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.out, id)
			return err
		},
	}
	create.Flags().StringVar(&props.Location, "location", "", "IP address hint for media server placement")
	create.Flags().BoolVar(&p2p, "p2p", false, "request peer-to-peer media")
	cmd.AddCommand(create)
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID string
		role      string
		ttl       time.Duration
		data      string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a client token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			r, err := credential.ParseRole(role)
			if err != nil {
				return err
			}
			to := credential.TokenOptions{Role: r, ConnectionData: data}
			if ttl > 0 {
				to.ExpireTime = time.Now().Add(ttl).Unix()
			}
			token, err := client.GenerateToken(sessionID, to)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id the token grants access to")
	cmd.Flags().StringVar(&role, "role", string(credential.RolePublisher), "subscriber, publisher or moderator")
	cmd.Flags().DurationVar(&ttl, "expire", 0, "token lifetime (default 24h)")
	cmd.Flags().StringVar(&data, "data", "", "connection metadata")
	_ = cmd.MarkFlagRequired("session")

	inspect := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token against the configured secret and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			claims, err := client.VerifyToken(args[0])
			if err != nil {
				return err
			}
			return printJSON(opts, map[string]any{
				"apiKey":         claims.APIKey,
				"sessionId":      claims.SessionID,
				"role":           claims.Role,
				"createTime":     claims.CreateTime,
				"expireTime":     claims.ExpireTime,
				"expires":        claims.Expires().UTC().Format(time.RFC3339),
				"nonce":          claims.Nonce,
				"connectionData": claims.ConnectionData,
			})
		},
	}
	cmd.AddCommand(inspect)
	return cmd
}

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "archive", Short: "Manage archives"}

	var name string
	start := &cobra.Command{
		Use:   "start <session-id>",
		Short: "Start recording a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			a, err := client.StartArchive(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			return printJSON(opts, a)
		},
	}
	start.Flags().StringVar(&name, "name", "", "archive name")

	stop := &cobra.Command{
		Use:   "stop <archive-id>",
		Short: "Stop a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			a, err := client.StopArchive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(opts, a)
		},
	}

	get := &cobra.Command{
		Use:   "get <archive-id>",
		Short: "Print one archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			a, err := client.GetArchive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(opts, a)
		},
	}

	del := &cobra.Command{
		Use:   "delete <archive-id>",
		Short: "Delete an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			if err := client.DeleteArchive(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.out, "deleted %s\n", args[0])
			return err
		},
	}

	var offset, count int
	list := &cobra.Command{
		Use:   "list",
		Short: "List archives, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			l, err := client.ListArchives(cmd.Context(), offset, count)
			if err != nil {
				return err
			}
			return printJSON(opts, l)
		},
	}
	list.Flags().IntVar(&offset, "offset", 0, "number of archives to skip")
	list.Flags().IntVar(&count, "count", opentok.DefaultListCount, "page size (1-1000)")

	cmd.AddCommand(start, stop, get, del, list)
	return cmd
}

func printJSON(opts *rootOptions, v any) error {
	enc := json.NewEncoder(opts.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
