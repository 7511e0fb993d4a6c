package dotsync

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mcp",
		Short:   MsgMCPShort,
		Long:    MsgMCPLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.console().Run(cmd.Context())
		},
	}
	cmd.AddCommand(newMCPServersCmd())
	cmd.AddCommand(newMCPPathCmd())
	cmd.AddCommand(newMCPValidateCmd())
	cmd.AddCommand(newMCPFixPathsCmd())
	cmd.AddCommand(newMCPLogsCmd())
	cmd.AddCommand(newMCPGrepCmd())
	cmd.AddCommand(newMCPCLICmd())
	return cmd
}

func (a *app) console() *mcp.Console {
	cli := a.mcpCLI()
	cli.Stream = nil
	return &mcp.Console{
		ConfigPath: a.mcpConfigPath(),
		Key:        a.cfg.MCP.ServersKey,
		Home:       a.paths.HomeDir(),
		Logs:       a.mcpLogs(),
		CLI:        cli,
		Selector:   mcp.PtermSelector{},
		Out:        a.out,
		NewSession: a.newSession,
	}
}

func newMCPServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: MsgMCPServersShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			doc, err := mcp.Load(a.mcpConfigPath(), a.cfg.MCP.ServersKey)
			if err != nil {
				return err
			}
			return a.renderer.RenderResult(doc.Servers())
		},
	}
}

func newMCPPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: MsgMCPPathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.renderer.RenderMessage(a.mcpConfigPath())
		},
	}
}

func newMCPValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: MsgMCPValidShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.console().Do(cmd.Context(), mcp.EntryValidate)
		},
	}
}

func newMCPFixPathsCmd() *cobra.Command {
	var from []string
	cmd := &cobra.Command{
		Use:   "fix-paths",
		Short: MsgMCPFixShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			path := a.mcpConfigPath()
			home := a.paths.HomeDir()

			if a.dryRun {
				doc, err := mcp.Load(path, a.cfg.MCP.ServersKey)
				if err != nil {
					return err
				}
				_, n, err := mcp.RewriteHome(doc.Content, doc.Key, from, home)
				if err != nil {
					return err
				}
				return a.renderer.RenderMessage(fmt.Sprintf(MsgFixWouldRewrite, n, path))
			}

			session := a.newSession()
			n, err := mcp.FixPaths(path, a.cfg.MCP.ServersKey, from, home, session)
			if err != nil {
				return err
			}
			if err := a.renderer.RenderMessage(fmt.Sprintf(MsgFixRewrote, n, path)); err != nil {
				return err
			}
			if session.Created() {
				return a.renderer.RenderMessage(fmt.Sprintf(MsgBackupIn, session.Dir()))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&from, "from", nil, MsgFlagFrom)
	return cmd
}

func newMCPLogsCmd() *cobra.Command {
	var (
		lines  int
		follow bool
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "logs [file]",
		Short: MsgMCPLogsShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			logs := a.mcpLogs()
			if list {
				files, err := logs.List()
				if err != nil {
					return err
				}
				return a.renderer.RenderResult(files)
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			path, err := logs.Resolve(name)
			if err != nil {
				return err
			}
			tail, err := mcp.Tail(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(a.out, line)
			}
			if !follow {
				return nil
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			fmt.Fprintf(a.errOut, MsgFollowing, path)
			return mcp.Follow(ctx, path, a.out)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, MsgFlagLines)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, MsgFlagFollow)
	cmd.Flags().BoolVarP(&list, "list", "l", false, MsgFlagList)
	return cmd
}

func newMCPGrepCmd() *cobra.Command {
	var ignoreCase bool
	cmd := &cobra.Command{
		Use:   "grep <pattern>",
		Short: MsgMCPGrepShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			files, err := a.mcpLogs().List()
			if err != nil {
				return err
			}
			paths := make([]string, len(files))
			for i, f := range files {
				paths[i] = f.Path
			}
			matches, err := mcp.Grep(paths, args[0], ignoreCase)
			if err != nil {
				return err
			}
			return a.renderer.RenderResult(matches)
		},
	}
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, MsgFlagIgnore)
	return cmd
}

func newMCPCLICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cli [args...]",
		Short: MsgMCPCLIShort,
		Long:  MsgMCPCLILong,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			cli := a.mcpCLI()
			cli.Stream = nil
			if len(args) == 0 {
				args = []string{"list"}
			}
			out, err := cli.Run(cmd.Context(), args...)
			fmt.Fprint(a.out, out)
			if err != nil {
				return errors.Wrapf(err, errors.ErrCommandFailed, "%v failed", cli.Command)
			}
			return nil
		},
	}
}
